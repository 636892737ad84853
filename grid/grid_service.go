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

package grid

import (
	"context"

	"github.com/9rum/fractalgrid/internal/rpc"
	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	Grid_Get_FullMethodName       = "/fractalgrid.Grid/Get"
	Grid_Set_FullMethodName       = "/fractalgrid.Grid/Set"
	Grid_Rebalance_FullMethodName = "/fractalgrid.Grid/Rebalance"
	Grid_Decay_FullMethodName     = "/fractalgrid.Grid/Decay"
	Grid_Leaves_FullMethodName    = "/fractalgrid.Grid/Leaves"
	Grid_Options_FullMethodName   = "/fractalgrid.Grid/Options"
	Grid_Configure_FullMethodName = "/fractalgrid.Grid/Configure"
)

// GridClient is the client API for Grid service.
type GridClient interface {
	// Get records load at a point and returns the new load of its leaf.
	Get(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error)
	// Set records load at a point and applies the split policy.
	Set(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*empty.Empty, error)
	// Rebalance runs a merge sweep and returns the number of merges.
	Rebalance(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	// Decay applies a decay sweep with the given factor.
	Decay(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*empty.Empty, error)
	// Leaves returns a snapshot of all leaves.
	Leaves(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	// Options returns the current options.
	Options(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Configure updates the reconfigurable options and rebalances.
	Configure(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type gridClient struct {
	cc grpc.ClientConnInterface
}

func NewGridClient(cc grpc.ClientConnInterface) GridClient {
	return &gridClient{cc}
}

func (c *gridClient) Get(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error) {
	return rpc.Invoke[wrapperspb.DoubleValue](ctx, c.cc, Grid_Get_FullMethodName, in, opts...)
}

func (c *gridClient) Set(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*empty.Empty, error) {
	return rpc.Invoke[empty.Empty](ctx, c.cc, Grid_Set_FullMethodName, in, opts...)
}

func (c *gridClient) Rebalance(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	return rpc.Invoke[wrapperspb.Int64Value](ctx, c.cc, Grid_Rebalance_FullMethodName, in, opts...)
}

func (c *gridClient) Decay(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*empty.Empty, error) {
	return rpc.Invoke[empty.Empty](ctx, c.cc, Grid_Decay_FullMethodName, in, opts...)
}

func (c *gridClient) Leaves(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return rpc.Invoke[structpb.ListValue](ctx, c.cc, Grid_Leaves_FullMethodName, in, opts...)
}

func (c *gridClient) Options(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return rpc.Invoke[structpb.Struct](ctx, c.cc, Grid_Options_FullMethodName, in, opts...)
}

func (c *gridClient) Configure(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return rpc.Invoke[structpb.Struct](ctx, c.cc, Grid_Configure_FullMethodName, in, opts...)
}

// GridServer is the server API for Grid service.
// All implementations must embed UnimplementedGridServer
// for forward compatibility.
type GridServer interface {
	Get(context.Context, *structpb.Struct) (*wrapperspb.DoubleValue, error)
	Set(context.Context, *structpb.Struct) (*empty.Empty, error)
	Rebalance(context.Context, *empty.Empty) (*wrapperspb.Int64Value, error)
	Decay(context.Context, *wrapperspb.DoubleValue) (*empty.Empty, error)
	Leaves(context.Context, *empty.Empty) (*structpb.ListValue, error)
	Options(context.Context, *empty.Empty) (*structpb.Struct, error)
	Configure(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedGridServer()
}

// UnimplementedGridServer must be embedded to have forward compatible implementations.
type UnimplementedGridServer struct {
}

func (UnimplementedGridServer) Get(context.Context, *structpb.Struct) (*wrapperspb.DoubleValue, error) {
	return nil, rpc.Unimplemented("Get")
}
func (UnimplementedGridServer) Set(context.Context, *structpb.Struct) (*empty.Empty, error) {
	return nil, rpc.Unimplemented("Set")
}
func (UnimplementedGridServer) Rebalance(context.Context, *empty.Empty) (*wrapperspb.Int64Value, error) {
	return nil, rpc.Unimplemented("Rebalance")
}
func (UnimplementedGridServer) Decay(context.Context, *wrapperspb.DoubleValue) (*empty.Empty, error) {
	return nil, rpc.Unimplemented("Decay")
}
func (UnimplementedGridServer) Leaves(context.Context, *empty.Empty) (*structpb.ListValue, error) {
	return nil, rpc.Unimplemented("Leaves")
}
func (UnimplementedGridServer) Options(context.Context, *empty.Empty) (*structpb.Struct, error) {
	return nil, rpc.Unimplemented("Options")
}
func (UnimplementedGridServer) Configure(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, rpc.Unimplemented("Configure")
}
func (UnimplementedGridServer) mustEmbedUnimplementedGridServer() {}

func RegisterGridServer(s grpc.ServiceRegistrar, srv GridServer) {
	s.RegisterService(&Grid_ServiceDesc, srv)
}

// Grid_ServiceDesc is the grpc.ServiceDesc for Grid service.
var Grid_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fractalgrid.Grid",
	HandlerType: (*GridServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Get", Handler: rpc.Unary(Grid_Get_FullMethodName, GridServer.Get)},
		{MethodName: "Set", Handler: rpc.Unary(Grid_Set_FullMethodName, GridServer.Set)},
		{MethodName: "Rebalance", Handler: rpc.Unary(Grid_Rebalance_FullMethodName, GridServer.Rebalance)},
		{MethodName: "Decay", Handler: rpc.Unary(Grid_Decay_FullMethodName, GridServer.Decay)},
		{MethodName: "Leaves", Handler: rpc.Unary(Grid_Leaves_FullMethodName, GridServer.Leaves)},
		{MethodName: "Options", Handler: rpc.Unary(Grid_Options_FullMethodName, GridServer.Options)},
		{MethodName: "Configure", Handler: rpc.Unary(Grid_Configure_FullMethodName, GridServer.Configure)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "grid.proto",
}
