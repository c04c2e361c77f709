// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package iruntime reports properties of the runtime environment.
package iruntime // import "github.com/signalpipe/signalpipe/internal/iruntime"

import "github.com/shirou/gopsutil/v4/mem"

// TotalMemory returns the total addressable memory of the host in bytes,
// used to resolve percentage-based memory limits.
func TotalMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}
