// Package mcp connects to Model Context Protocol servers and exposes their
// tools as grafo tools.
//
// A [Client] speaks to one server over stdio ([NewStdioClient]), streamable
// HTTP ([NewStreamableHTTPClient]), or in process ([NewInProcessClient]).
// [Client.Tools] lists the server's tools as [tool.GenericTool] values, so
// they can be registered in a [tool.Catalog] or passed to a client alongside
// locally defined tools.
//
//	mcpClient, err := mcp.NewStdioClient(ctx, "npx", []string{"-y", "my-mcp-server"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mcpClient.Close()
//
//	tools, err := mcpClient.Tools(ctx)
package mcp
