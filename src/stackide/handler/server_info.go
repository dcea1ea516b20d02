package handler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/uber/stackide-proxy/src/stackide/internal/serverinfofile"
	"go.uber.org/config"
)

const (
	_configKeyServiceName = "service.name"

	_infoKeyPID     = "pid"
	_infoKeyService = "service"
)

// Output the identity of this process so editors can tell a stale info file from a live proxy.
// The JSON-RPC inbound adds its own address field once it is listening.
func outputProcessInfo(cfg config.Provider, infofile serverinfofile.ServerInfoFile) error {
	var name string
	if err := cfg.Get(_configKeyServiceName).Populate(&name); err != nil {
		return fmt.Errorf("getting config field %q: %w", _configKeyServiceName, err)
	}
	if name == "" {
		return fmt.Errorf("missing field %q in config", _configKeyServiceName)
	}

	fields := []struct{ key, value string }{
		{_infoKeyService, name},
		{_infoKeyPID, strconv.Itoa(os.Getpid())},
	}
	for _, f := range fields {
		if err := infofile.UpdateField(f.key, f.value); err != nil {
			return fmt.Errorf("outputting %q to info file: %w", f.key, err)
		}
	}

	return nil
}
