// Package sites holds one providers.Adapter per supported novel site. Each
// adapter is a small set of goquery selectors plus cleanup rules, and the
// package-level registry is built once from the static list in All.
package sites
