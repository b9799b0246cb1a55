// Package gate evaluates a resolved repository descriptor against release
// policy and blocks pipelines whose working copies are not fit to ship.
package gate
