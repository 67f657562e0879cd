package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "chimera.api.v1alpha1.SessionService"

// Method names
const (
	MethodCreateSession     = "CreateSession"
	MethodGetSession        = "GetSession"
	MethodCloseSession      = "CloseSession"
	MethodSubmit            = "Submit"
	MethodSelectNode        = "SelectNode"
	MethodSetEmergencyStop  = "SetEmergencyStop"
	MethodResume            = "Resume"
	MethodRegenerateAvatar  = "RegenerateAvatar"
	MethodStartEncounter    = "StartEncounter"
	MethodAdvanceTurn       = "AdvanceTurn"
	MethodEndEncounter      = "EndEncounter"
	MethodCompleteObjective = "CompleteObjective"
	MethodRenderMap         = "RenderMap"
	MethodSaveSession       = "SaveSession"
	MethodLoadSession       = "LoadSession"
	MethodListSaves         = "ListSaves"
	MethodDeleteSave        = "DeleteSave"
)

// SessionServiceServer is the server API. Requests and responses are
// google.protobuf.Struct documents keyed by snake_case field names.
type SessionServiceServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SelectNode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetEmergencyStop(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Resume(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegenerateAvatar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartEncounter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdvanceTurn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndEncounter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CompleteObjective(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenderMap(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSaves(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteSave(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(SessionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var unaryMethods = []struct {
	name string
	call unaryMethod
}{
	{MethodCreateSession, SessionServiceServer.CreateSession},
	{MethodGetSession, SessionServiceServer.GetSession},
	{MethodCloseSession, SessionServiceServer.CloseSession},
	{MethodSubmit, SessionServiceServer.Submit},
	{MethodSelectNode, SessionServiceServer.SelectNode},
	{MethodSetEmergencyStop, SessionServiceServer.SetEmergencyStop},
	{MethodResume, SessionServiceServer.Resume},
	{MethodRegenerateAvatar, SessionServiceServer.RegenerateAvatar},
	{MethodStartEncounter, SessionServiceServer.StartEncounter},
	{MethodAdvanceTurn, SessionServiceServer.AdvanceTurn},
	{MethodEndEncounter, SessionServiceServer.EndEncounter},
	{MethodCompleteObjective, SessionServiceServer.CompleteObjective},
	{MethodRenderMap, SessionServiceServer.RenderMap},
	{MethodSaveSession, SessionServiceServer.SaveSession},
	{MethodLoadSession, SessionServiceServer.LoadSession},
	{MethodListSaves, SessionServiceServer.ListSaves},
	{MethodDeleteSave, SessionServiceServer.DeleteSave},
}

// SessionServiceDesc describes the service for grpc.ServiceRegistrar
var SessionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods:     methodDescs(),
	Streams:     []grpc.StreamDesc{},
	Metadata:    "chimera/api/v1alpha1/session.proto",
}

func methodDescs() []grpc.MethodDesc {
	descs := make([]grpc.MethodDesc, 0, len(unaryMethods))
	for _, m := range unaryMethods {
		descs = append(descs, grpc.MethodDesc{
			MethodName: m.name,
			Handler:    unaryHandler(m.name, m.call),
		})
	}
	return descs
}

func unaryHandler(name string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SessionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(name),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SessionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterSessionServiceServer registers srv with the gRPC server
func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionServiceDesc, srv)
}

// FullMethod returns the gRPC path of a method
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// Client calls the session service over a connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes a method with a request document. A nil request sends an
// empty document.
func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
