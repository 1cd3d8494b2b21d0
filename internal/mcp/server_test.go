package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/domain/timeentry"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, svc Services) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	server := NewServer(Config{Services: svc})
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	c := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := c.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestServer_ListsCatalog(t *testing.T) {
	cs := connect(t, Services{})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, def := range buildToolCatalog() {
		require.True(t, names[def.Name], "missing tool %s", def.Name)
	}
	require.Len(t, res.Tools, len(buildToolCatalog()))
}

func TestServer_CallTool(t *testing.T) {
	cs := connect(t, Services{
		Time: timeStub{runningFn: func(context.Context) (*timeentry.TimeEntry, error) { return nil, nil }},
		Clients: clientStub{getFn: func(context.Context, string) (*client.Client, error) {
			return nil, client.ErrClientNotFound
		}},
	})
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_running_timer"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.JSONEq(t, `{"running":false}`, res.Content[0].(*sdkmcp.TextContent).Text)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_client", Arguments: map[string]any{"id": "nope"}})
	require.NoError(t, err)
	require.True(t, res.IsError)

	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &apiErr))
	require.Equal(t, CodeNotFound, apiErr.Code)
	require.Equal(t, "client not found", apiErr.Message)
}

func TestServer_DocResources(t *testing.T) {
	cs := connect(t, Services{})

	for _, doc := range docResources {
		res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: doc.URI})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		require.Equal(t, doc.Content, res.Contents[0].Text)
	}
}

func TestToolCatalog_Schemas(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range buildToolCatalog() {
		require.False(t, seen[def.Name], "duplicate tool %s", def.Name)
		seen[def.Name] = true
		require.Equal(t, "object", def.InputSchema["type"], def.Name)
		require.NotEmpty(t, def.Description, def.Name)
	}
}
