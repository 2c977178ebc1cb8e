package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// ExporterRPC implements the go-plugin Plugin interface for exporters.
type ExporterRPC struct {
	plugin.Plugin
	Impl Exporter
}

// Server returns an RPC server for this plugin.
func (p *ExporterRPC) Server(*plugin.MuxBroker) (any, error) {
	return &ExporterRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *ExporterRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &ExporterRPCClient{client: c}, nil
}

// ExporterRPCServer is the RPC server implementation for exporters.
type ExporterRPCServer struct {
	Impl Exporter
}

// Export implements the RPC method for exporting palettes.
func (s *ExporterRPCServer) Export(data ExportData, resp *map[string][]byte) error {
	result, err := s.Impl.Export(context.Background(), data)
	if err != nil {
		return err
	}
	*resp = result
	return nil
}

// PreExecuteResponse carries PreExecute results over RPC. Errors travel as
// strings because net/rpc cannot encode arbitrary error values.
type PreExecuteResponse struct {
	Skip   bool
	Reason string
	Error  string
}

// PreExecute implements the RPC method for pre-execution hooks.
func (s *ExporterRPCServer) PreExecute(_ any, resp *PreExecuteResponse) error {
	skip, reason, err := s.Impl.PreExecute(context.Background())
	resp.Skip = skip
	resp.Reason = reason
	if err != nil {
		resp.Error = err.Error()
	}
	return nil
}

// PostExecute implements the RPC method for post-execution hooks.
func (s *ExporterRPCServer) PostExecute(files []string, resp *string) error {
	if err := s.Impl.PostExecute(context.Background(), files); err != nil {
		*resp = err.Error()
	}
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *ExporterRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// GetFlagHelp implements the RPC method for fetching argument help.
func (s *ExporterRPCServer) GetFlagHelp(_ any, resp *[]FlagHelp) error {
	*resp = s.Impl.GetFlagHelp()
	return nil
}

// ExporterRPCClient is the RPC client implementation for exporters. It
// satisfies Exporter.
type ExporterRPCClient struct {
	client *rpc.Client
}

// Export calls the remote Export method.
func (c *ExporterRPCClient) Export(_ context.Context, data ExportData) (map[string][]byte, error) {
	var result map[string][]byte
	if err := c.client.Call("Plugin.Export", data, &result); err != nil {
		return nil, &RPCError{Method: "Export", Message: err.Error()}
	}
	return result, nil
}

// PreExecute calls the remote PreExecute method.
func (c *ExporterRPCClient) PreExecute(_ context.Context) (bool, string, error) {
	var resp PreExecuteResponse
	if err := c.client.Call("Plugin.PreExecute", new(any), &resp); err != nil {
		return false, "", &RPCError{Method: "PreExecute", Message: err.Error()}
	}
	if resp.Error != "" {
		return resp.Skip, resp.Reason, &RPCError{Method: "PreExecute", Message: resp.Error}
	}
	return resp.Skip, resp.Reason, nil
}

// PostExecute calls the remote PostExecute method.
func (c *ExporterRPCClient) PostExecute(_ context.Context, files []string) error {
	var errMsg string
	if err := c.client.Call("Plugin.PostExecute", files, &errMsg); err != nil {
		return &RPCError{Method: "PostExecute", Message: err.Error()}
	}
	if errMsg != "" {
		return &RPCError{Method: "PostExecute", Message: errMsg}
	}
	return nil
}

// GetMetadata calls the remote GetMetadata method. Failures yield an empty
// PluginInfo.
func (c *ExporterRPCClient) GetMetadata() PluginInfo {
	var info PluginInfo
	if err := c.client.Call("Plugin.GetMetadata", new(any), &info); err != nil {
		return PluginInfo{}
	}
	return info
}

// GetFlagHelp calls the remote GetFlagHelp method.
func (c *ExporterRPCClient) GetFlagHelp() []FlagHelp {
	var help []FlagHelp
	if err := c.client.Call("Plugin.GetFlagHelp", new(any), &help); err != nil {
		return []FlagHelp{}
	}
	return help
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Method  string
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Method == "" {
		return e.Message
	}
	return "plugin " + e.Method + ": " + e.Message
}
