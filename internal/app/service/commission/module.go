package commission

import "go.uber.org/fx"

// Module exposes the commission ledger service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
