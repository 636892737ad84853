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
	"os"
	"sync"
	"syscall"

	"github.com/golang/glog"
	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// schedulerServer implements the server API for Scheduler service.
type schedulerServer struct {
	UnimplementedSchedulerServer
	scheduler *Scheduler
	done      chan<- os.Signal
	once      sync.Once
}

// NewSchedulerServer creates a new scheduler server.  On Finalize, a SIGTERM
// is delivered to done once every task has stopped; done should be buffered.
func NewSchedulerServer(scheduler *Scheduler, done chan<- os.Signal) SchedulerServer {
	return &schedulerServer{
		scheduler: scheduler,
		done:      done,
	}
}

// Pause holds off the writers from their next iteration on.
func (s *schedulerServer) Pause(ctx context.Context, in *empty.Empty) (*empty.Empty, error) {
	glog.Info("Pause called")

	s.scheduler.Pause()
	return new(empty.Empty), nil
}

// Resume lets paused writers continue.
func (s *schedulerServer) Resume(ctx context.Context, in *empty.Empty) (*empty.Empty, error) {
	glog.Info("Resume called")

	s.scheduler.Resume()
	return new(empty.Empty), nil
}

// Status reports the pause flag and the state of every task.
func (s *schedulerServer) Status(ctx context.Context, in *empty.Empty) (*structpb.Struct, error) {
	glog.V(1).Info("Status called")

	tasks := make([]interface{}, 0)
	for _, task := range s.scheduler.Status() {
		tasks = append(tasks, map[string]interface{}{
			"name":       task.Name,
			"iterations": float64(task.Iterations),
			"stopped":    task.Stopped,
		})
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"paused": s.scheduler.Paused(),
		"tasks":  tasks,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Finalize stops every task, waits for them and then requests the server to
// shut down.  Subsequent calls are no-ops.
func (s *schedulerServer) Finalize(ctx context.Context, in *empty.Empty) (*empty.Empty, error) {
	glog.Info("Finalize called")
	defer glog.Flush()

	s.once.Do(func() {
		s.scheduler.Stop()
		s.scheduler.Wait()

		select {
		case s.done <- syscall.SIGTERM:
		default:
		}
	})
	return new(empty.Empty), nil
}
