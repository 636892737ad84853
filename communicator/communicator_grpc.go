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
	"github.com/golang/glog"
	"github.com/golang/protobuf/ptypes/empty"
)

// communicatorServer implements the server API for Communicator service.
type communicatorServer struct {
	UnimplementedCommunicatorServer
	broadcaster *Broadcaster
}

// NewCommunicatorServer creates a new communicator server that serves
// snapshots published by the given broadcaster.
func NewCommunicatorServer(broadcaster *Broadcaster) CommunicatorServer {
	return &communicatorServer{broadcaster: broadcaster}
}

// Watch sends the current snapshot, then every snapshot the broadcaster
// publishes until either the client goes away or the broadcaster stops.
func (c *communicatorServer) Watch(in *empty.Empty, stream Communicator_WatchServer) error {
	glog.Info("Watch called")

	snapshots, cancel := c.broadcaster.Subscribe()
	defer cancel()

	if err := stream.Send(c.broadcaster.Snapshot()); err != nil {
		return err
	}
	for {
		select {
		case <-stream.Context().Done():
			glog.Info("watcher went away")
			return nil
		case snapshot, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err := stream.Send(snapshot); err != nil {
				return err
			}
		}
	}
}
