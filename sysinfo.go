// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package qsarview

import (
	"runtime"

	"github.com/molecula/qsarview/errors"
)

// SystemInfo describes the host the server runs on.
type SystemInfo interface {
	Uptime() (uint64, error)
	Platform() (string, error)
	Family() (string, error)
	OSVersion() (string, error)
	KernelVersion() (string, error)
	MemFree() (uint64, error)
	MemTotal() (uint64, error)
	MemUsed() (uint64, error)
}

// NewNopSystemInfo creates a no-op implementation of SystemInfo.
func NewNopSystemInfo() *NopSystemInfo {
	return &NopSystemInfo{}
}

// NopSystemInfo is a no-op implementation of SystemInfo.
type NopSystemInfo struct{}

func (NopSystemInfo) Uptime() (uint64, error) { return 0, nil }
func (NopSystemInfo) Platform() (string, error) { return "", nil }
func (NopSystemInfo) Family() (string, error) { return "", nil }
func (NopSystemInfo) OSVersion() (string, error) { return "", nil }
func (NopSystemInfo) KernelVersion() (string, error) { return "", nil }
func (NopSystemInfo) MemFree() (uint64, error) { return 0, nil }
func (NopSystemInfo) MemTotal() (uint64, error) { return 0, nil }
func (NopSystemInfo) MemUsed() (uint64, error) { return 0, nil }

// HostInfo is a snapshot of SystemInfo.
type HostInfo struct {
	Platform      string `json:"platform"`
	Family        string `json:"family"`
	OSVersion     string `json:"osVersion"`
	KernelVersion string `json:"kernelVersion"`
	Uptime        uint64 `json:"uptime"`
	MemTotal      uint64 `json:"memTotal"`
	MemFree       uint64 `json:"memFree"`
	MemUsed       uint64 `json:"memUsed"`
	NumCPU        int    `json:"numCPU"`
	GoVersion     string `json:"goVersion"`
}

// CollectHostInfo reads every value of si. The first failure is returned.
func CollectHostInfo(si SystemInfo) (*HostInfo, error) {
	info := &HostInfo{
		NumCPU:    runtime.NumCPU(),
		GoVersion: GoVersion,
	}
	var err error
	if info.Platform, err = si.Platform(); err != nil {
		return nil, errors.Wrap(err, "platform")
	}
	if info.Family, err = si.Family(); err != nil {
		return nil, errors.Wrap(err, "family")
	}
	if info.OSVersion, err = si.OSVersion(); err != nil {
		return nil, errors.Wrap(err, "os version")
	}
	if info.KernelVersion, err = si.KernelVersion(); err != nil {
		return nil, errors.Wrap(err, "kernel version")
	}
	if info.Uptime, err = si.Uptime(); err != nil {
		return nil, errors.Wrap(err, "uptime")
	}
	if info.MemTotal, err = si.MemTotal(); err != nil {
		return nil, errors.Wrap(err, "memory total")
	}
	if info.MemFree, err = si.MemFree(); err != nil {
		return nil, errors.Wrap(err, "memory free")
	}
	if info.MemUsed, err = si.MemUsed(); err != nil {
		return nil, errors.Wrap(err, "memory used")
	}
	return info, nil
}
