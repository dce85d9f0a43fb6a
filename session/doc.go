// Package session owns the active nearest-neighbor engine and the user's
// moving query point. All commands run under one mutex; engine rebuilds
// load and build off-lock and swap the finished engine in.
package session
