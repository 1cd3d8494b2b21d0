package integration_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func billableBinary(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"./bin/billable", "../../bin/billable"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("Server binary not found. Run 'make build' first.")
	return ""
}

func stdioEnv() []string {
	return append(os.Environ(),
		"BILLABLE_TRANSPORT_MODE=stdio",
		"BILLABLE_DB_PATH=:memory:",
		"BILLABLE_CONFIG_PATH=",
		"BILLABLE_LOG_LEVEL=debug",
	)
}

// TestStdioProtocolCompliance drives the binary with the SDK client.
func TestStdioProtocolCompliance(t *testing.T) {
	binaryPath := billableBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = stdioEnv()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	require.NoError(t, err, "Failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "billable", initResult.ServerInfo.Name)
		require.Equal(t, "0.1.0", initResult.ServerInfo.Version)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err)

		names := make(map[string]bool, len(tools.Tools))
		for _, tool := range tools.Tools {
			names[tool.Name] = true
		}
		for _, name := range []string{
			"create_client",
			"start_timer",
			"stop_timer",
			"get_running_timer",
			"create_invoice",
			"add_line_item",
			"record_payment",
			"mark_invoice_paid",
			"save_profile",
		} {
			require.True(t, names[name], "Missing expected tool: %s", name)
		}
	})

	t.Run("StopWithoutTimer", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "stop_timer"})
		require.NoError(t, err)
		require.True(t, result.IsError)

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		var apiErr struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal([]byte(text.Text), &apiErr))
		require.Equal(t, "STATE_ERROR", apiErr.Code)
	})

	t.Run("RunningTimerRoundTrip", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "create_client",
			Arguments: map[string]any{"name": "Acme Corp"},
		})
		require.NoError(t, err)
		require.False(t, result.IsError, "create_client: %v", result.Content)

		var client struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*sdkmcp.TextContent).Text), &client))

		result, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "start_timer",
			Arguments: map[string]any{"client_id": client.ID, "description": "Discovery"},
		})
		require.NoError(t, err)
		require.False(t, result.IsError, "start_timer: %v", result.Content)

		result, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_running_timer"})
		require.NoError(t, err)
		require.Contains(t, result.Content[0].(*sdkmcp.TextContent).Text, `"running":true`)
	})
}

// TestStdioProtocol_StdoutHygiene checks that only JSON-RPC frames reach
// stdout even with debug logging on.
func TestStdioProtocol_StdoutHygiene(t *testing.T) {
	binaryPath := billableBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = stdioEnv()

	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	stderr, err := cmd.StderrPipe()
	require.NoError(t, err)

	require.NoError(t, cmd.Start())
	defer func() {
		stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	frames := []string{
		`{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}},"id":1}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"list_clients","arguments":{}},"id":2}`,
	}
	for _, frame := range frames {
		_, err := io.WriteString(stdin, frame+"\n")
		require.NoError(t, err)
	}

	lines := readLines(stdout, 2, 5*time.Second)
	require.Len(t, lines, 2, "expected two responses on stdout")
	for _, line := range lines {
		var msg struct {
			JSONRPC string          `json:"jsonrpc"`
			ID      json.RawMessage `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &msg), "non JSON-RPC output on stdout: %q", line)
		require.Equal(t, "2.0", msg.JSONRPC)
		require.NotEmpty(t, msg.ID)
	}

	logs := readLines(stderr, 1, 2*time.Second)
	require.NotEmpty(t, logs, "debug logs should go to stderr")
}

// readLines collects up to n lines or whatever arrived before the timeout.
func readLines(r io.Reader, n int, timeout time.Duration) []string {
	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()

	var lines []string
	deadline := time.After(timeout)
	for len(lines) < n {
		select {
		case line, ok := <-ch:
			if !ok {
				return lines
			}
			lines = append(lines, line)
		case <-deadline:
			return lines
		}
	}
	return lines
}
