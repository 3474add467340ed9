//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
)

// BuildApp wires the client components using Google Wire.
func BuildApp(flags Flags) (*App, func(), error) {
	wire.Build(
		provideConfig,
		provideLogger,
		provideFake,
		provideMetrics,
		provideStats,
		provideHub,
		provideClient,
		providePublisher,
		provideWebhook,
		provideSession,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
