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

package communicator

import (
	"context"

	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	Communicator_Watch_FullMethodName = "/fractalgrid.Communicator/Watch"
)

// CommunicatorClient is the client API for Communicator service.
type CommunicatorClient interface {
	// Watch streams snapshots of the leaves, starting with the current one.
	Watch(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (Communicator_WatchClient, error)
}

type communicatorClient struct {
	cc grpc.ClientConnInterface
}

func NewCommunicatorClient(cc grpc.ClientConnInterface) CommunicatorClient {
	return &communicatorClient{cc}
}

func (c *communicatorClient) Watch(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (Communicator_WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &Communicator_ServiceDesc.Streams[0], Communicator_Watch_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &communicatorWatchClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type Communicator_WatchClient interface {
	Recv() (*structpb.ListValue, error)
	grpc.ClientStream
}

type communicatorWatchClient struct {
	grpc.ClientStream
}

func (x *communicatorWatchClient) Recv() (*structpb.ListValue, error) {
	m := new(structpb.ListValue)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// CommunicatorServer is the server API for Communicator service.
// All implementations must embed UnimplementedCommunicatorServer
// for forward compatibility.
type CommunicatorServer interface {
	Watch(*empty.Empty, Communicator_WatchServer) error
	mustEmbedUnimplementedCommunicatorServer()
}

// UnimplementedCommunicatorServer must be embedded to have forward compatible implementations.
type UnimplementedCommunicatorServer struct {
}

func (UnimplementedCommunicatorServer) Watch(*empty.Empty, Communicator_WatchServer) error {
	return status.Errorf(codes.Unimplemented, "method Watch not implemented")
}
func (UnimplementedCommunicatorServer) mustEmbedUnimplementedCommunicatorServer() {}

func RegisterCommunicatorServer(s grpc.ServiceRegistrar, srv CommunicatorServer) {
	s.RegisterService(&Communicator_ServiceDesc, srv)
}

func _Communicator_Watch_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(empty.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(CommunicatorServer).Watch(m, &communicatorWatchServer{stream})
}

type Communicator_WatchServer interface {
	Send(*structpb.ListValue) error
	grpc.ServerStream
}

type communicatorWatchServer struct {
	grpc.ServerStream
}

func (x *communicatorWatchServer) Send(m *structpb.ListValue) error {
	return x.ServerStream.SendMsg(m)
}

// Communicator_ServiceDesc is the grpc.ServiceDesc for Communicator service.
var Communicator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fractalgrid.Communicator",
	HandlerType: (*CommunicatorServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       _Communicator_Watch_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "communicator.proto",
}
