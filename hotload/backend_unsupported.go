//go:build !(linux || darwin || freebsd)

package hotload

func defaultBackend() Backend {
	return nil
}
