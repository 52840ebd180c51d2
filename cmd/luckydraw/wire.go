//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/Digital-Creators-Team/lucky-draw-module/config"
	appwire "github.com/Digital-Creators-Team/lucky-draw-module/wire"
	"github.com/google/wire"
)

// initService wires the serve command.
func initService(*config.Config) (*appwire.Service, func(), error) {
	panic(wire.Build(appwire.FullSet))
}
