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
	"syscall"
	"testing"
	"time"

	"github.com/9rum/fractalgrid/internal/rpctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestSchedulerServer(t *testing.T) {
	ctx := context.Background()
	s := New()
	done := make(chan os.Signal, 1)
	conn := rpctest.Dial(t, func(server *grpc.Server) {
		RegisterSchedulerServer(server, NewSchedulerServer(s, done))
	})
	c := NewSchedulerClient(conn)

	h := s.Go(new(countingTask))
	require.Eventually(t, func() bool { return 1 <= h.Iterations() }, waitFor, tick)

	_, err := c.Pause(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	assert.True(t, s.Paused())

	out, err := c.Status(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	status := out.AsMap()
	assert.Equal(t, true, status["paused"])
	tasks := status["tasks"].([]interface{})
	require.Len(t, tasks, 1)
	task := tasks[0].(map[string]interface{})
	assert.Equal(t, "counting", task["name"])
	assert.Equal(t, false, task["stopped"])
	assert.LessOrEqual(t, 1., task["iterations"].(float64))

	_, err = c.Resume(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	assert.False(t, s.Paused())

	_, err = c.Finalize(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	select {
	case sig := <-done:
		assert.Equal(t, syscall.SIGTERM, sig)
	case <-time.After(waitFor):
		t.Fatal("Finalize did not signal shutdown")
	}
	assert.True(t, s.Status()[0].Stopped)

	_, err = c.Finalize(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	assert.Empty(t, done)
}
