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

package scheduler

import (
	"context"

	"github.com/9rum/fractalgrid/internal/rpc"
	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	Scheduler_Pause_FullMethodName    = "/fractalgrid.Scheduler/Pause"
	Scheduler_Resume_FullMethodName   = "/fractalgrid.Scheduler/Resume"
	Scheduler_Status_FullMethodName   = "/fractalgrid.Scheduler/Status"
	Scheduler_Finalize_FullMethodName = "/fractalgrid.Scheduler/Finalize"
)

// SchedulerClient is the client API for Scheduler service.
type SchedulerClient interface {
	// Pause holds off the writers.
	Pause(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	// Resume lets paused writers continue.
	Resume(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	// Status reports the pause flag and the state of every task.
	Status(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Finalize stops every task and shuts the server down.
	Finalize(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
}

type schedulerClient struct {
	cc grpc.ClientConnInterface
}

func NewSchedulerClient(cc grpc.ClientConnInterface) SchedulerClient {
	return &schedulerClient{cc}
}

func (c *schedulerClient) Pause(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	return rpc.Invoke[empty.Empty](ctx, c.cc, Scheduler_Pause_FullMethodName, in, opts...)
}

func (c *schedulerClient) Resume(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	return rpc.Invoke[empty.Empty](ctx, c.cc, Scheduler_Resume_FullMethodName, in, opts...)
}

func (c *schedulerClient) Status(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return rpc.Invoke[structpb.Struct](ctx, c.cc, Scheduler_Status_FullMethodName, in, opts...)
}

func (c *schedulerClient) Finalize(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	return rpc.Invoke[empty.Empty](ctx, c.cc, Scheduler_Finalize_FullMethodName, in, opts...)
}

// SchedulerServer is the server API for Scheduler service.
// All implementations must embed UnimplementedSchedulerServer
// for forward compatibility.
type SchedulerServer interface {
	Pause(context.Context, *empty.Empty) (*empty.Empty, error)
	Resume(context.Context, *empty.Empty) (*empty.Empty, error)
	Status(context.Context, *empty.Empty) (*structpb.Struct, error)
	Finalize(context.Context, *empty.Empty) (*empty.Empty, error)
	mustEmbedUnimplementedSchedulerServer()
}

// UnimplementedSchedulerServer must be embedded to have forward compatible implementations.
type UnimplementedSchedulerServer struct {
}

func (UnimplementedSchedulerServer) Pause(context.Context, *empty.Empty) (*empty.Empty, error) {
	return nil, rpc.Unimplemented("Pause")
}
func (UnimplementedSchedulerServer) Resume(context.Context, *empty.Empty) (*empty.Empty, error) {
	return nil, rpc.Unimplemented("Resume")
}
func (UnimplementedSchedulerServer) Status(context.Context, *empty.Empty) (*structpb.Struct, error) {
	return nil, rpc.Unimplemented("Status")
}
func (UnimplementedSchedulerServer) Finalize(context.Context, *empty.Empty) (*empty.Empty, error) {
	return nil, rpc.Unimplemented("Finalize")
}
func (UnimplementedSchedulerServer) mustEmbedUnimplementedSchedulerServer() {}

func RegisterSchedulerServer(s grpc.ServiceRegistrar, srv SchedulerServer) {
	s.RegisterService(&Scheduler_ServiceDesc, srv)
}

// Scheduler_ServiceDesc is the grpc.ServiceDesc for Scheduler service.
var Scheduler_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fractalgrid.Scheduler",
	HandlerType: (*SchedulerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Pause", Handler: rpc.Unary(Scheduler_Pause_FullMethodName, SchedulerServer.Pause)},
		{MethodName: "Resume", Handler: rpc.Unary(Scheduler_Resume_FullMethodName, SchedulerServer.Resume)},
		{MethodName: "Status", Handler: rpc.Unary(Scheduler_Status_FullMethodName, SchedulerServer.Status)},
		{MethodName: "Finalize", Handler: rpc.Unary(Scheduler_Finalize_FullMethodName, SchedulerServer.Finalize)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scheduler.proto",
}
