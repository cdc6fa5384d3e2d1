// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/bioFAM/mofatools"

func main() {
	mofatools.Main()
}
