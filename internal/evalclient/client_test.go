package evalclient_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/liautaud/boldr/internal/evalclient"
	"github.com/liautaud/boldr/internal/qir"
)

func TestClientEvaluateOverPipe(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go func() {
		_ = evalclient.ServeOne(serverConn, func(e *qir.Expr) (*qir.Expr, error) {
			return evalclient.EvaluateLocally(e, nil)
		})
	}()

	client := evalclient.NewClient(clientConn, 5*time.Second)
	e := qir.ApplyN(qir.Builtin("operator", "mul"), qir.Value(qir.NumberScalar(3)), qir.Value(qir.NumberScalar(4)))
	got, err := client.Evaluate(context.Background(), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := qir.Value(qir.NumberScalar(12))
	if !qir.Equal(got, want) {
		t.Fatalf("got %s, want %s", qir.Sprint(got), qir.Sprint(want))
	}
}

func TestClientEvaluateRemoteError(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go func() {
		_ = evalclient.ServeOne(serverConn, func(e *qir.Expr) (*qir.Expr, error) {
			return evalclient.EvaluateLocally(e, nil)
		})
	}()

	client := evalclient.NewClient(clientConn, 5*time.Second)
	_, err := client.Evaluate(context.Background(), qir.Identifier("unbound"))
	if err == nil {
		t.Fatalf("expected a remote error")
	}
	if _, ok := err.(*evalclient.RemoteError); !ok {
		t.Fatalf("expected *evalclient.RemoteError, got %T: %v", err, err)
	}
}
