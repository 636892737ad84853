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
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/golang/glog"
	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// gridServer implements the server API for Grid service.
type gridServer struct {
	UnimplementedGridServer
	grid *Grid
}

// NewGridServer creates a new grid server backed by the given grid.
func NewGridServer(grid *Grid) GridServer {
	return &gridServer{grid: grid}
}

// toStatus converts an error returned by the grid into a gRPC status.
func toStatus(err error) error {
	var invalid validator.ValidationErrors
	switch {
	case errors.Is(err, ErrInvalidCoordinate), errors.Is(err, ErrInvalidDecayFactor), errors.Is(err, ErrImmutableOption), errors.As(err, &invalid):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Get records load at the given point and returns the new load of its leaf.
func (s *gridServer) Get(ctx context.Context, in *structpb.Struct) (*wrapperspb.DoubleValue, error) {
	x, y, err := DecodePoint(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	glog.V(1).Infof("Get called with x: %v y: %v", x, y)

	load, err := s.grid.Get(x, y)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Double(load), nil
}

// Set records load at the given point and applies the split policy.
func (s *gridServer) Set(ctx context.Context, in *structpb.Struct) (*empty.Empty, error) {
	x, y, err := DecodePoint(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	glog.V(1).Infof("Set called with x: %v y: %v", x, y)

	if err = s.grid.Set(x, y); err != nil {
		return nil, toStatus(err)
	}
	return new(empty.Empty), nil
}

// Rebalance runs a merge sweep.
func (s *gridServer) Rebalance(ctx context.Context, in *empty.Empty) (*wrapperspb.Int64Value, error) {
	glog.Info("Rebalance called")

	return wrapperspb.Int64(int64(s.grid.PeriodicRebalance())), nil
}

// Decay applies a decay sweep with the given factor, which must lie in (0, 1].
func (s *gridServer) Decay(ctx context.Context, in *wrapperspb.DoubleValue) (*empty.Empty, error) {
	glog.Infof("Decay called with factor: %v", in.GetValue())

	if err := s.grid.DecayLoad(in.GetValue()); err != nil {
		return nil, toStatus(err)
	}

	return new(empty.Empty), nil
}

// Leaves returns a snapshot of all leaves.
func (s *gridServer) Leaves(ctx context.Context, in *empty.Empty) (*structpb.ListValue, error) {
	glog.V(1).Info("Leaves called")

	return EncodeLeaves(s.grid.Leaves()), nil
}

// Options returns the current options.
func (s *gridServer) Options(ctx context.Context, in *empty.Empty) (*structpb.Struct, error) {
	return EncodeOptions(s.grid.Options()), nil
}

// Configure updates the given subset of split_threshold, merge_threshold,
// decay_factor and decay_interval, then runs a merge sweep within the same
// critical section so that a raised merge threshold takes effect at once.
func (s *gridServer) Configure(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	glog.Infof("Configure called with %v", in.AsMap())

	patch, err := decodePatch(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var (
		opts   Options
		merges int
	)
	err = s.grid.Update(func(tx *Tx) error {
		if err := tx.Configure(patch); err != nil {
			return err
		}
		merges = tx.PeriodicRebalance()
		opts = tx.Options()
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}

	glog.Infof("split threshold: %v merge threshold: %v decay factor: %v decay interval: %v merges: %d",
		opts.SplitThreshold, opts.MergeThreshold, opts.DecayFactor, opts.DecayInterval, merges)
	return EncodeOptions(opts), nil
}
