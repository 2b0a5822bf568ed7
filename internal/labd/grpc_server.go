package labd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// ExperimentServiceName is the fully qualified gRPC service name.
const ExperimentServiceName = "knapsacklab.v1.ExperimentService"

// ExperimentServiceServer is the gRPC surface of the executor. Messages are
// google.protobuf.Struct documents with the same fields as the HTTP API.
type ExperimentServiceServer interface {
	CreateExperiment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetExperiment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopExperiment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListExperiments(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(ExperimentServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ExperimentServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ExperimentServiceName + "/" + method,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(ExperimentServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ExperimentServiceDesc describes ExperimentService for grpc.Server.RegisterService.
var ExperimentServiceDesc = grpc.ServiceDesc{
	ServiceName: ExperimentServiceName,
	HandlerType: (*ExperimentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateExperiment", ExperimentServiceServer.CreateExperiment),
		unaryHandler("GetExperiment", ExperimentServiceServer.GetExperiment),
		unaryHandler("StopExperiment", ExperimentServiceServer.StopExperiment),
		unaryHandler("ListExperiments", ExperimentServiceServer.ListExperiments),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "knapsacklab/v1/experiment.proto",
}

// RegisterGRPC registers the experiment service and a health service that
// reports it as serving.
func RegisterGRPC(s *grpc.Server, executor *Executor) *health.Server {
	s.RegisterService(&ExperimentServiceDesc, NewExperimentGRPCServer(executor))
	hs := health.NewServer()
	hs.SetServingStatus(ExperimentServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

// ExperimentGRPCServer implements ExperimentServiceServer on an Executor.
type ExperimentGRPCServer struct {
	store    *Store
	Executor *Executor
}

func NewExperimentGRPCServer(executor *Executor) *ExperimentGRPCServer {
	return &ExperimentGRPCServer{
		store:    executor.Store(),
		Executor: executor,
	}
}

func (s *ExperimentGRPCServer) CreateExperiment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := requestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	rec, err := s.Executor.Start(req)
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("experiment created (gRPC)", "experiment_id", rec.ID, "kind", rec.Kind)
	return recordStruct(rec)
}

func (s *ExperimentGRPCServer) GetExperiment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(in, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, ErrRunIDMissing.Error())
	}
	rec, ok := s.store.Get(id)
	if !ok {
		return nil, status.Error(codes.NotFound, ErrRunNotFound.Error())
	}
	return recordStruct(rec)
}

func (s *ExperimentGRPCServer) StopExperiment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	rec, err := s.Executor.Stop(stringField(in, "id"))
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("experiment cancelled (gRPC)", "experiment_id", rec.ID)
	return recordStruct(rec.Summary())
}

func (s *ExperimentGRPCServer) ListExperiments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
		Status string `json:"status"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	recs := s.store.List(req.Limit, req.Offset, models.ExperimentStatus(req.Status))
	return recordListStruct(recs)
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrRunIDMissing):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func stringField(in *structpb.Struct, name string) string {
	if in == nil {
		return ""
	}
	return in.GetFields()[name].GetStringValue()
}

// Struct numbers are doubles, so seeds travel as decimal strings.
const maxExactSeed = 1 << 53

// requestFromStruct decodes a create request. seed may be a decimal string
// or an integral number no larger than 2^53 in magnitude.
func requestFromStruct(in *structpb.Struct) (Request, error) {
	var req Request
	if in == nil {
		return req, nil
	}
	fields := make(map[string]*structpb.Value, len(in.GetFields()))
	for k, v := range in.GetFields() {
		fields[k] = v
	}
	seedValue, hasSeed := fields["seed"]
	delete(fields, "seed")
	if err := fromStruct(&structpb.Struct{Fields: fields}, &req); err != nil {
		return req, err
	}
	if !hasSeed {
		return req, nil
	}
	switch kind := seedValue.GetKind().(type) {
	case *structpb.Value_StringValue:
		seed, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return req, fmt.Errorf("decode request: seed %q: %w", kind.StringValue, err)
		}
		req.Seed = seed
	case *structpb.Value_NumberValue:
		v := kind.NumberValue
		if v != math.Trunc(v) || math.Abs(v) > maxExactSeed {
			return req, fmt.Errorf("decode request: seed %v is not an exact integer, send it as a string", v)
		}
		req.Seed = int64(v)
	case *structpb.Value_NullValue:
	default:
		return req, fmt.Errorf("decode request: seed must be a string or a number")
	}
	return req, nil
}

// recordMap renders a record as a JSON object with its seed as a string.
func recordMap(rec Record) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if rec.Seed != 0 {
		m["seed"] = strconv.FormatInt(rec.Seed, 10)
	}
	return m, nil
}

func recordStruct(rec Record) (*structpb.Struct, error) {
	m, err := recordMap(rec)
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"experiment": m})
}

func recordListStruct(recs []Record) (*structpb.Struct, error) {
	list := make([]any, 0, len(recs))
	for _, rec := range recs {
		m, err := recordMap(rec)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return toStruct(map[string]any{"experiments": list})
}

// toStruct converts v to a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// fromStruct decodes a Struct into v through its JSON form.
func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// ExperimentClient is a thin client for ExperimentService.
type ExperimentClient struct {
	cc grpc.ClientConnInterface
}

func NewExperimentClient(cc grpc.ClientConnInterface) *ExperimentClient {
	return &ExperimentClient{cc: cc}
}

func (c *ExperimentClient) invoke(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ExperimentServiceName+"/"+method, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ExperimentClient) CreateExperiment(ctx context.Context, req map[string]any) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateExperiment", req)
}

func (c *ExperimentClient) GetExperiment(ctx context.Context, id string) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetExperiment", map[string]any{"id": id})
}

func (c *ExperimentClient) StopExperiment(ctx context.Context, id string) (*structpb.Struct, error) {
	return c.invoke(ctx, "StopExperiment", map[string]any{"id": id})
}

func (c *ExperimentClient) ListExperiments(ctx context.Context, limit int) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListExperiments", map[string]any{"limit": limit})
}
