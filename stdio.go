package mcp12306

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
)

// ServeStdio runs the newline-delimited JSON-RPC transport on stdin/stdout.
// Logging must already be redirected to stderr so stdout stays clean for
// protocol frames.
func (s *Server) ServeStdio(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)
	encoder := json.NewEncoder(os.Stdout)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(line) <= 1 {
			continue
		}

		var req rpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			if encErr := encoder.Encode(errorResponse(nil, codeParseError, "parse error")); encErr != nil {
				return encErr
			}
			continue
		}
		if req.JSONRPC != "2.0" {
			if encErr := encoder.Encode(errorResponse(req.ID, codeInvalidRequest, "jsonrpc must be \"2.0\"")); encErr != nil {
				return encErr
			}
			continue
		}

		resp, _, handled := s.dispatch(ctx, req, "stdio", "stdio")
		if !handled || req.isNotification() {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

// InitStdio prepares the process for stdio transport.
func InitStdio() {
	InitStdioLogging()
	log.Println("stdio transport ready")
}
