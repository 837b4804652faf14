// Package update checks a mobile app for a newer release and installs it.
//
// This package handles:
//   - Fetching the Android version endpoint or the App Store lookup
//   - Deciding whether the installed build is outdated, by version code first
//   - Downloading the package into a cache with progress reporting
//   - Refusing packages signed by a different certificate
//   - Handing the package or the store listing to the platform
//
// Device access goes through the Bridge interface, so the workflow runs the
// same against adb, a fake, or any other backend.
//
// Example usage:
//
//	c := update.New(bridge, update.Options{
//	    ApkVersionURL: "https://example.com/version.json",
//	    NeedUpdateApp: func(ctx context.Context, r *update.RemoteVersionInfo) bool {
//	        return true
//	    },
//	    OnError: func(err error) { log.Println(err) },
//	})
//	state := c.CheckUpdate(ctx)
package update
