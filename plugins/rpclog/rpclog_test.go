package rpclog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestPlugin() (*Plugin, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

func TestUnaryInterceptorLogsAndPassesThrough(t *testing.T) {
	p, buf := newTestPlugin()

	ic := p.UnaryInterceptors()[0]
	resp, err := ic(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: "/svc/Do"},
		func(ctx context.Context, req any) (any, error) {
			return "resp", nil
		})
	if err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if resp != "resp" {
		t.Fatalf("resp = %v, want passthrough", resp)
	}

	out := buf.String()
	if !strings.Contains(out, "/svc/Do") || !strings.Contains(out, "code=OK") {
		t.Fatalf("log output missing fields: %q", out)
	}
}

func TestUnaryInterceptorLogsErrorCode(t *testing.T) {
	p, buf := newTestPlugin()

	ic := p.UnaryInterceptors()[0]
	_, err := ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Do"},
		func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.PermissionDenied, "no")
		})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("error not passed through: %v", err)
	}
	if !strings.Contains(buf.String(), "code=PermissionDenied") {
		t.Fatalf("log output missing code: %q", buf.String())
	}
}

func TestStreamInterceptorLogs(t *testing.T) {
	p, buf := newTestPlugin()

	ic := p.StreamInterceptors()[0]
	err := ic(nil, nil, &grpc.StreamServerInfo{FullMethod: "/svc/Watch"},
		func(srv any, ss grpc.ServerStream) error {
			return nil
		})
	if err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if !strings.Contains(buf.String(), "/svc/Watch") {
		t.Fatalf("log output missing method: %q", buf.String())
	}
}
