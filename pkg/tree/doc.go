// Package tree builds the render tree for a configuration schema. Every group
// becomes a ul container (groups other than the root are wrapped in an li
// caption item) and every field becomes an li leaf whose id is derived from
// its path. The tree is plain data; renderers turn it into markup.
package tree
