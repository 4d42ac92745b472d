// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package gopsutil_test

import (
	"runtime"
	"testing"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/gopsutil"
)

func TestSystemInfo(t *testing.T) {
	var systemInfo qsarview.SystemInfo = gopsutil.NewSystemInfo()

	uptime, err := systemInfo.Uptime()
	if err != nil || uptime == 0 {
		t.Fatalf("Error collecting uptime (error: %v)", err)
	}

	platform, err := systemInfo.Platform()
	if err != nil {
		t.Fatalf("Error getting platform. (error: %v)", err)
	}
	if runtime.GOOS == "darwin" && platform != runtime.GOOS {
		t.Fatalf("Platform must be %s, got %s", runtime.GOOS, platform)
	}

	info, err := qsarview.CollectHostInfo(systemInfo)
	if err != nil {
		t.Fatalf("Error collecting host info: %v", err)
	}
	if info.MemTotal == 0 || info.MemTotal < info.MemFree {
		t.Fatalf("Unexpected memory figures: total %d, free %d", info.MemTotal, info.MemFree)
	}
	if info.NumCPU != runtime.NumCPU() {
		t.Fatalf("Unexpected CPU count %d", info.NumCPU)
	}
}
