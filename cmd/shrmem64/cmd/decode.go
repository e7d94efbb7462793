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
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:     "decode STATUS",
	Aliases: []string{"rsn"},
	Short:   "Decode a composite shrmem64 status",
	Long: `Decode a composite status into its error kind, IARV64 return code
and the surviving bits of the IARV64 reason code.

The status may be given in decimal or as 0x-prefixed hex.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := shrmem64.ParseStatus(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("status: %s\n", s)
		fmt.Printf("kind:   %d (%s)\n", uint8(s.Kind()), s.Kind())
		fmt.Printf("rc:     %d\n", s.ReturnCode())
		fmt.Printf("rsn:    0x??%04X?? (bits 8-23 of the IARV64 reason code)\n", s.ReasonCode())
		return nil
	},
}
