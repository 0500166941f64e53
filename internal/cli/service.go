package cli

import "wrapdb-release/internal/app"

func newAppService() app.Service {
	return app.NewService()
}
