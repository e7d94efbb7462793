/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/blacktop/go-shrmem64"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check IARV64 support and show the current address space token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := shrmem64.Supported()
		if err != nil {
			fmt.Printf("iarv64 support: error: %v\n", err)
		} else {
			fmt.Printf("iarv64 support: %v\n", ok)
		}

		token, err := shrmem64.AddressSpaceToken()
		if err != nil {
			fmt.Println("address space token: unknown (no system context)")
			return nil
		}
		ascb, asid := shrmem64.UnpackToken(token)
		fmt.Printf("address space token: 0x%016X (ascb=0x%08X asid=0x%04X)\n", uint64(token), ascb, asid)
		return nil
	},
}
