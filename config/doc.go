// Package config loads the YAML configuration shared by the client
// applications.
//
// Values of the form ${VAR} are expanded from the environment before
// parsing, so secrets never need to live in the file itself. Applications
// with extra sections embed Config in their own struct and load it with
// LoadInto.
package config
