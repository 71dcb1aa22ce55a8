// Package model provides the data structures shared by the pipeline package and its options.
// It defines the information a stage exposes to options and the hooks an option implements.
package model
