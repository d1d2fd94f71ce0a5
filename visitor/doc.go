// Package visitor offers reflection backed visitors over the logical content
// of containers: slices and arrays by index, maps and sets in a stable key
// order, and container/list lists by position.
package visitor
