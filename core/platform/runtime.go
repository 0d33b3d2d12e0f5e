// Package platform describes the host runtime the core is running on.
package platform

import "runtime"

type Runtime struct {
	// Native is true on mobile runtimes that expose native speech and audio
	// plugins (android, ios).
	Native bool
	OS     string
}

func Detect() Runtime {
	return Runtime{
		Native: isNativeOS(runtime.GOOS),
		OS:     runtime.GOOS,
	}
}

func Desktop() Runtime { return Runtime{OS: runtime.GOOS} }

func Mobile(os string) Runtime { return Runtime{Native: true, OS: os} }

func isNativeOS(goos string) bool {
	switch goos {
	case "android", "ios":
		return true
	}
	return false
}
