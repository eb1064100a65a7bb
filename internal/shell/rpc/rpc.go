// Package rpc defines the shell service's wire contract: method names,
// struct-encoded messages, and a client.
//
// Messages are google.protobuf.Struct values so the service can be
// registered without generated code. Field names are snake_case.
package rpc

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "prism.shell.v1.ShellService"

// Method names.
const (
	MethodStartCore           = "StartCore"
	MethodStopCore            = "StopCore"
	MethodCoreHealth          = "CoreHealth"
	MethodGetStatus           = "GetStatus"
	MethodGetSystemInfo       = "GetSystemInfo"
	MethodShowNotification    = "ShowNotification"
	MethodCheckForUpdates     = "CheckForUpdates"
	MethodCheckCoreConnection = "CheckCoreConnection"
	MethodMinimizeToTray      = "MinimizeToTray"
	MethodShowFromTray        = "ShowFromTray"
	MethodCloseRequested      = "CloseRequested"
	MethodWatchVisibility     = "WatchVisibility"
)

// FullMethod returns the gRPC path for method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// NewStruct builds a Struct from plain Go values. It panics on values
// structpb cannot represent, which only happens with programmer error.
func NewStruct(fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// GetString returns a string field, or "".
func GetString(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

// GetBool returns a bool field, or false.
func GetBool(s *structpb.Struct, key string) bool {
	if s == nil {
		return false
	}
	return s.GetFields()[key].GetBoolValue()
}

// GetInt returns a numeric field truncated to int, or 0.
func GetInt(s *structpb.Struct, key string) int {
	if s == nil {
		return 0
	}
	return int(s.GetFields()[key].GetNumberValue())
}

// GetStruct returns a nested struct field, or nil.
func GetStruct(s *structpb.Struct, key string) *structpb.Struct {
	if s == nil {
		return nil
	}
	return s.GetFields()[key].GetStructValue()
}
