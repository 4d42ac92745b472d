// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package gopsutil

import (
	"sync"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/molecula/qsarview"
)

var _ qsarview.SystemInfo = NewSystemInfo()

// SystemInfo is an implementation of qsarview.SystemInfo that uses gopsutil
// to collect information about the host OS. Platform values are read once;
// memory and uptime are read on every call.
type SystemInfo struct {
	platformOnce sync.Once
	platformErr  error
	platform     string
	family       string
	osVersion    string
}

// NewSystemInfo is a constructor for the gopsutil implementation of SystemInfo
func NewSystemInfo() *SystemInfo {
	return &SystemInfo{}
}

// Uptime returns the system uptime in seconds
func (s *SystemInfo) Uptime() (uint64, error) {
	return host.Uptime()
}

// Platform returns the system platform
func (s *SystemInfo) Platform() (string, error) {
	err := s.collectPlatformInfo()
	return s.platform, err
}

// Family returns the system family
func (s *SystemInfo) Family() (string, error) {
	err := s.collectPlatformInfo()
	return s.family, err
}

// OSVersion returns the OS Version
func (s *SystemInfo) OSVersion() (string, error) {
	err := s.collectPlatformInfo()
	return s.osVersion, err
}

// KernelVersion returns the kernel version as a string
func (s *SystemInfo) KernelVersion() (string, error) {
	return host.KernelVersion()
}

// collectPlatformInfo fetches and caches system platform information
func (s *SystemInfo) collectPlatformInfo() error {
	s.platformOnce.Do(func() {
		s.platform, s.family, s.osVersion, s.platformErr = host.PlatformInformation()
	})
	return s.platformErr
}

// MemFree returns the amount of free memory in bytes
func (s *SystemInfo) MemFree() (uint64, error) {
	m, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return m.Free, nil
}

// MemTotal returns the amount of total memory in bytes
func (s *SystemInfo) MemTotal() (uint64, error) {
	m, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return m.Total, nil
}

// MemUsed returns the amount of used memory in bytes
func (s *SystemInfo) MemUsed() (uint64, error) {
	m, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return m.Used, nil
}
