// Package config provides configuration structures and utilities for
// pageguard. It defines the observer timing windows, the panel reload delay,
// browser settings, the snapshot store location and report preferences.
package config
