package app

import (
	"io"

	"github.com/vk/amdgo/internal/eventloop"
	"github.com/vk/amdgo/internal/registry"
	"github.com/vk/amdgo/modules/env_vars"
	"github.com/vk/amdgo/modules/http_client"
	"github.com/vk/amdgo/modules/print"
	"github.com/vk/amdgo/modules/socketio"
)

// coreModules is the definitive list of native modules compiled into the
// amdgo binary.
func coreModules(loop *eventloop.Loop, out io.Writer) []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&print.Module{Out: out},
		&http_client.Module{Loop: loop},
		&socketio.Module{Loop: loop},
	}
}
