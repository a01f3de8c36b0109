// Package chooser binds named choice profiles ("minimal", "standard",
// "expert") to a render tree, marking or pruning the nodes outside the
// selected profile.
package chooser
