// Copyright 2022 Sogang University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rpctest runs gRPC services in process for tests.
package rpctest

import (
	"context"
	"net"
	"testing"

	"github.com/9rum/fractalgrid/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

// Dial starts a server with the services installed by register on an
// in-memory listener and returns a client connection to it.  Both are torn
// down when the test ends.
func Dial(tb testing.TB, register func(s *grpc.Server)) *grpc.ClientConn {
	tb.Helper()
	lis := bufconn.Listen(bufSize)
	server := rpc.NewServer()
	register(server)
	go server.Serve(lis)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		tb.Fatalf("did not connect: %v", err)
	}
	tb.Cleanup(func() {
		conn.Close()
		server.Stop()
	})
	return conn
}
