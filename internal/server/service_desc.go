package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "pricelist.v1.ExtractionService"

const (
	methodExtractText = "/" + ServiceName + "/ExtractText"
	methodGetProgress = "/" + ServiceName + "/GetProgress"
	methodExportList  = "/" + ServiceName + "/ExportList"
)

// ExtractionServiceServer is the server API. Messages are protobuf well-known
// types so no generated code is needed on either side.
type ExtractionServiceServer interface {
	// ExtractText runs the extraction core on posted OCR text.
	ExtractText(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// GetProgress reports the job counts of a price list by status.
	GetProgress(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// ExportList returns the stored items of a price list as an XLSX workbook.
	ExportList(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

func RegisterExtractionServiceServer(s grpc.ServiceRegistrar, srv ExtractionServiceServer) {
	s.RegisterService(&ExtractionService_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(ExtractionServiceServer, context.Context, *Req) (Resp, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ExtractionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ExtractionServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ExtractionService_ServiceDesc is the grpc.ServiceDesc for ExtractionService.
var ExtractionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ExtractText",
			Handler:    unaryHandler(methodExtractText, ExtractionServiceServer.ExtractText),
		},
		{
			MethodName: "GetProgress",
			Handler:    unaryHandler(methodGetProgress, ExtractionServiceServer.GetProgress),
		},
		{
			MethodName: "ExportList",
			Handler:    unaryHandler(methodExportList, ExtractionServiceServer.ExportList),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pricelist/v1/extraction.proto",
}

// ExtractionServiceClient is the client API for ExtractionService.
type ExtractionServiceClient interface {
	ExtractText(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetProgress(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ExportList(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type extractionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionServiceClient(cc grpc.ClientConnInterface) ExtractionServiceClient {
	return &extractionServiceClient{cc}
}

func (c *extractionServiceClient) ExtractText(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodExtractText, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extractionServiceClient) GetProgress(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetProgress, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *extractionServiceClient) ExportList(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodExportList, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
