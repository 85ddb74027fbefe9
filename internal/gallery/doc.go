// Package gallery exports a self-contained copy of the archive for
// offline viewing: the index, the gallery bundle, every canonical
// manifest, and each asset file the manifests reference.
package gallery
