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

// Package main implements the FractalGrid server.  The server owns a single
// grid, runs the writer, decay, controller and broadcaster tasks against it,
// and exposes the grid, the task control surface and the leaf snapshot stream
// over gRPC.  Prometheus metrics are served over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/9rum/fractalgrid/communicator"
	"github.com/9rum/fractalgrid/grid"
	"github.com/9rum/fractalgrid/internal/data"
	"github.com/9rum/fractalgrid/internal/quadtree"
	"github.com/9rum/fractalgrid/internal/rpc"
	"github.com/9rum/fractalgrid/scheduler"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

type config struct {
	port               int
	metrics            string
	options            string
	writers            int
	writePeriod        time.Duration
	controllerInterval time.Duration
	broadcastInterval  time.Duration
	sampler            string
	hotspot            string
	seed               int64
}

func main() {
	var cfg config
	flag.IntVar(&cfg.port, "p", 50051, "The server port")
	flag.StringVar(&cfg.metrics, "metrics", ":9090", "The address to serve metrics at; empty disables metrics")
	flag.StringVar(&cfg.options, "config", "", "The YAML file to load grid options from")
	flag.IntVar(&cfg.writers, "writers", 4, "The number of writer tasks")
	flag.DurationVar(&cfg.writePeriod, "write-period", scheduler.DefaultWritePeriod, "The pause between writes of each writer")
	flag.DurationVar(&cfg.controllerInterval, "controller-interval", scheduler.DefaultControllerInterval, "The interval between merge sweeps")
	flag.DurationVar(&cfg.broadcastInterval, "broadcast-interval", communicator.DefaultBroadcastInterval, "The interval between leaf snapshots")
	flag.StringVar(&cfg.sampler, "sampler", "uniform", "The distribution writers sample points from: uniform or normal")
	flag.StringVar(&cfg.hotspot, "hotspot", "", "The region writers sample from as min_x,min_y,max_x,max_y; defaults to the central tenth of the grid bounds")
	flag.Int64Var(&cfg.seed, "seed", time.Now().UnixNano(), "The seed of the first writer")
	flag.Parse()
	defer glog.Flush()

	if err := run(cfg); err != nil {
		glog.Fatalf("failed to serve: %v", err)
	}
}

func run(cfg config) error {
	opts := grid.DefaultOptions()
	if cfg.options != "" {
		var err error
		if opts, err = grid.LoadOptions(cfg.options); err != nil {
			return err
		}
	}
	g, err := grid.New(opts)
	if err != nil {
		return err
	}

	region, err := parseRegion(cfg.hotspot, opts.Bounds)
	if err != nil {
		return err
	}
	kind, err := parseKind(cfg.sampler)
	if err != nil {
		return err
	}

	sched := scheduler.New()
	for rank := 0; rank < cfg.writers; rank++ {
		sampler := data.New(region, opts.Bounds, cfg.seed+int64(rank), kind)
		sched.Go(scheduler.NewWriter(rank, g, sampler, sched, cfg.writePeriod, 0))
	}
	sched.Go(scheduler.NewDecayTask(g))
	sched.Go(scheduler.NewController(g, cfg.controllerInterval))
	broadcaster := communicator.NewBroadcaster(g, cfg.broadcastInterval)
	sched.Go(broadcaster)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.port))
	if err != nil {
		return err
	}
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	server := newServer(g, sched, broadcaster, done)

	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(func() error {
		glog.Infof("server listening at %v", lis.Addr())
		return server.Serve(lis)
	})

	var metrics *http.Server
	if cfg.metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics = &http.Server{Addr: cfg.metrics, Handler: mux}
		eg.Go(func() error {
			glog.Infof("metrics listening at %v", cfg.metrics)
			if err := metrics.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		select {
		case sig := <-done:
			glog.Infof("received %v, shutting down", sig)
		case <-ctx.Done():
		}
		sched.Stop()
		sched.Wait()
		server.GracefulStop()
		if metrics != nil {
			return metrics.Shutdown(context.Background())
		}
		return nil
	})

	return eg.Wait()
}

func newServer(g *grid.Grid, sched *scheduler.Scheduler, broadcaster *communicator.Broadcaster, done chan<- os.Signal) *grpc.Server {
	server := rpc.NewServer()

	grid.RegisterGridServer(server, grid.NewGridServer(g))
	scheduler.RegisterSchedulerServer(server, scheduler.NewSchedulerServer(sched, done))
	communicator.RegisterCommunicatorServer(server, communicator.NewCommunicatorServer(broadcaster))

	return server
}

// parseRegion parses a region given as min_x,min_y,max_x,max_y, which must lie
// within the bounds.  An empty
// string selects the region spanning a tenth of the bounds around their center.
func parseRegion(s string, bounds quadtree.Bounds) (quadtree.Bounds, error) {
	if s == "" {
		midX, midY := bounds.Mid()
		halfW, halfH := (bounds.MaxX-bounds.MinX)/20., (bounds.MaxY-bounds.MinY)/20.
		return quadtree.Bounds{MinX: midX - halfW, MinY: midY - halfH, MaxX: midX + halfW, MaxY: midY + halfH}, nil
	}
	var region quadtree.Bounds
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "%g,%g,%g,%g", &region.MinX, &region.MinY, &region.MaxX, &region.MaxY); err != nil {
		return region, fmt.Errorf("invalid hotspot %q: %w", s, err)
	}
	if !region.Valid() {
		return region, fmt.Errorf("invalid hotspot %q: empty region", s)
	}
	if region.MinX < bounds.MinX || region.MinY < bounds.MinY || bounds.MaxX < region.MaxX || bounds.MaxY < region.MaxY {
		return region, fmt.Errorf("invalid hotspot %q: not within grid bounds %v", s, bounds)
	}
	return region, nil
}

func parseKind(s string) (int32, error) {
	switch strings.ToLower(s) {
	case "uniform":
		return data.UNIFORM, nil
	case "normal":
		return data.NORMAL, nil
	default:
		return 0, fmt.Errorf("unknown sampler %q", s)
	}
}
