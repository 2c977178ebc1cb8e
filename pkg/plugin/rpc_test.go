package plugin

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"testing"
)

// Mock implementation for testing.
type mockExporter struct {
	files       map[string][]byte
	skipPreExec bool
	skipReason  string
	metadata    PluginInfo
	flagHelp    []FlagHelp
	exportErr   error
	preExecErr  error
	postExecErr error

	lastData    ExportData
	postedFiles []string
}

func (m *mockExporter) Export(_ context.Context, data ExportData) (map[string][]byte, error) {
	m.lastData = data
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return m.files, nil
}

func (m *mockExporter) PreExecute(_ context.Context) (bool, string, error) {
	if m.preExecErr != nil {
		return false, "", m.preExecErr
	}
	return m.skipPreExec, m.skipReason, nil
}

func (m *mockExporter) PostExecute(_ context.Context, files []string) error {
	m.postedFiles = files
	return m.postExecErr
}

func (m *mockExporter) GetMetadata() PluginInfo {
	return m.metadata
}

func (m *mockExporter) GetFlagHelp() []FlagHelp {
	return m.flagHelp
}

func sampleData() ExportData {
	return ExportData{
		ID:          "6f1c2b8e-0000-4000-8000-000000000000",
		Group:       "brand",
		Format:      "hex",
		Pattern:     "tailwind-smoothed",
		GeneratedAt: "2026-03-14T09:30:00Z",
		Palettes: []PaletteData{{
			Name:       "primary",
			Input:      "#2d72d2",
			AnchorStop: 500,
			Stops: []StopData{
				{Stop: 100, Value: "#e3ecfb", Hex: "#e3ecfb", RGB: RGBColour{R: 227, G: 236, B: 251}},
				{Stop: 500, Value: "#2d72d2", Hex: "#2d72d2", RGB: RGBColour{R: 45, G: 114, B: 210}},
			},
		}},
	}
}

// rpcPair serves impl over an in-memory connection and returns a client.
func rpcPair(t *testing.T, impl Exporter) *ExporterRPCClient {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	server := rpc.NewServer()
	if err := server.RegisterName("Plugin", &ExporterRPCServer{Impl: impl}); err != nil {
		t.Fatalf("RegisterName() error = %v", err)
	}
	go server.ServeConn(serverConn)

	client := rpc.NewClient(clientConn)
	t.Cleanup(func() { client.Close() })

	raw, err := (&ExporterRPC{}).Client(nil, client)
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	return raw.(*ExporterRPCClient)
}

// TestExporterRPC tests the go-plugin wrapper.
func TestExporterRPC(t *testing.T) {
	mock := &mockExporter{}
	p := &ExporterRPC{Impl: mock}

	server, err := p.Server(nil)
	if err != nil {
		t.Fatalf("Server() error = %v", err)
	}
	rpcServer, ok := server.(*ExporterRPCServer)
	if !ok {
		t.Fatal("Server() returned wrong type")
	}
	if rpcServer.Impl != mock {
		t.Fatal("Server() impl not set correctly")
	}

	client, err := p.Client(nil, nil)
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	if _, ok := client.(Exporter); !ok {
		t.Error("Client() does not implement Exporter")
	}

	if _, ok := PluginMap(nil)[ExporterPluginName]; !ok {
		t.Errorf("PluginMap() missing %q", ExporterPluginName)
	}
}

// TestExporterRoundTrip exercises every method across a real net/rpc connection.
func TestExporterRoundTrip(t *testing.T) {
	mock := &mockExporter{
		files: map[string][]byte{"palette.css": []byte(":root {}")},
		metadata: PluginInfo{
			Name:            "css",
			Version:         "1.0.0",
			ProtocolVersion: ProtocolVersion,
			PluginProtocol:  PluginTypeGoPlugin,
		},
		flagHelp:   []FlagHelp{{Name: "prefix", Type: "string", Default: "--colour"}},
	}
	client := rpcPair(t, mock)
	ctx := context.Background()

	t.Run("Export", func(t *testing.T) {
		files, err := client.Export(ctx, sampleData())
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if string(files["palette.css"]) != ":root {}" {
			t.Errorf("Export() files = %v", files)
		}
		if got := mock.lastData.Palettes[0].Stops[1].Hex; got != "#2d72d2" {
			t.Errorf("plugin received stop 500 = %q, want #2d72d2", got)
		}
	})

	t.Run("PreExecute", func(t *testing.T) {
		skip, _, err := client.PreExecute(ctx)
		if err != nil || skip {
			t.Errorf("PreExecute() = %v, %v; want no skip", skip, err)
		}
	})

	t.Run("PostExecute", func(t *testing.T) {
		if err := client.PostExecute(ctx, []string{"out/palette.css"}); err != nil {
			t.Fatalf("PostExecute() error = %v", err)
		}
		if len(mock.postedFiles) != 1 || mock.postedFiles[0] != "out/palette.css" {
			t.Errorf("plugin received files %v", mock.postedFiles)
		}
	})

	t.Run("GetMetadata", func(t *testing.T) {
		if info := client.GetMetadata(); info.Name != "css" || info.ProtocolVersion != ProtocolVersion {
			t.Errorf("GetMetadata() = %+v", info)
		}
	})

	t.Run("GetFlagHelp", func(t *testing.T) {
		help := client.GetFlagHelp()
		if len(help) != 1 || help[0].Name != "prefix" {
			t.Errorf("GetFlagHelp() = %+v", help)
		}
	})
}

// TestExporterRoundTrip_Errors checks plugin errors surface as RPCError.
func TestExporterRoundTrip_Errors(t *testing.T) {
	mock := &mockExporter{
		exportErr:   errors.New("template missing"),
		preExecErr:  errors.New("no config dir"),
		postExecErr: errors.New("reload failed"),
	}
	client := rpcPair(t, mock)
	ctx := context.Background()

	var rpcErr *RPCError
	if _, err := client.Export(ctx, sampleData()); !errors.As(err, &rpcErr) || rpcErr.Method != "Export" {
		t.Errorf("Export() error = %v, want RPCError", err)
	}
	if _, _, err := client.PreExecute(ctx); !errors.As(err, &rpcErr) || rpcErr.Message != "no config dir" {
		t.Errorf("PreExecute() error = %v, want RPCError with plugin message", err)
	}
	if err := client.PostExecute(ctx, nil); !errors.As(err, &rpcErr) || rpcErr.Message != "reload failed" {
		t.Errorf("PostExecute() error = %v, want RPCError with plugin message", err)
	}
}

// TestExporterPreExecuteSkip tests a plugin skipping itself.
func TestExporterPreExecuteSkip(t *testing.T) {
	server := &ExporterRPCServer{Impl: &mockExporter{skipPreExec: true, skipReason: "nothing to do"}}
	var resp PreExecuteResponse
	if err := server.PreExecute(nil, &resp); err != nil {
		t.Fatalf("PreExecute() error = %v", err)
	}
	if !resp.Skip || resp.Reason != "nothing to do" || resp.Error != "" {
		t.Errorf("PreExecute() response = %+v", resp)
	}
}

// TestRPCError tests the RPCError type.
func TestRPCError(t *testing.T) {
	err := &RPCError{Message: "test error"}
	if err.Error() != "test error" {
		t.Errorf("RPCError.Error() = %q, want %q", err.Error(), "test error")
	}
	err = &RPCError{Method: "Export", Message: "boom"}
	if err.Error() != "plugin Export: boom" {
		t.Errorf("RPCError.Error() = %q", err.Error())
	}
}
