// ABOUTME: CLI command to call any advisor tool directly
// ABOUTME: Arguments are a JSON object, the same payload MCP and HTTP clients send
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/podcast-wisdom/internal/advisor"
)

// NewToolCmd creates the tool command
func NewToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool <name> [json-args]",
		Short: "Call an advisor tool",
		Long: `Call an advisor tool with JSON arguments and print its answer.

Tools: ` + strings.Join(toolNames(), ", ") + `

Examples:
  wisdom tool get_advice '{"challenge": "when to hire a VP of sales"}'
  wisdom tool compare_experts '{"topic": "pricing", "experts": ["Madhavan"]}'
  wisdom tool list_episodes '{"sort": "duration", "limit": 3}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runTool,
	}

	return cmd
}

func toolNames() []string {
	defs := advisor.Definitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

// parseToolArgs decodes the optional JSON argument object
func parseToolArgs(args []string) (map[string]any, error) {
	if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
		return nil, nil
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(args[1]), &parsed); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return parsed, nil
}

func runTool(cmd *cobra.Command, args []string) error {
	name := args[0]
	toolArgs, err := parseToolArgs(args)
	if err != nil {
		return err
	}

	// Validate before connecting to anything
	req, err := advisor.ParseRequest(name, toolArgs)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	stack, err := newAdvisorStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	text, err := stack.service.Dispatch(ctx, req)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(cmd, map[string]string{"tool": name, "text": text})
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
