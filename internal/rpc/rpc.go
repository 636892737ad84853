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

// Package rpc provides the glue for describing gRPC services whose messages
// are protocol buffers well-known types, so that the services need no
// generated code.
package rpc

import (
	"context"

	"github.com/golang/glog"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryHandler has the signature of grpc.MethodDesc.Handler.
type UnaryHandler = func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error)

// Unary adapts the given method expression of a server interface into a
// handler for a unary method with the given full name.
func Unary[S, Req, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) UnaryHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Invoke performs a unary call and returns the decoded response.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Unimplemented returns the error reported by methods a server does not
// implement.
func Unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

// NewServer creates a new gRPC server that converts panics in handlers into
// Internal errors instead of crashing the process.
func NewServer(opts ...grpc.ServerOption) *grpc.Server {
	recovery := grpc_recovery.WithRecoveryHandler(func(p interface{}) error {
		glog.Errorf("recovered from panic: %v", p)
		return status.Errorf(codes.Internal, "%v", p)
	})
	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			grpc_recovery.UnaryServerInterceptor(recovery),
		),
		grpc.ChainStreamInterceptor(
			grpc_recovery.StreamServerInterceptor(recovery),
		),
	)
	return grpc.NewServer(opts...)
}
