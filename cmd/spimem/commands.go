package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-spimem/artifact"
	"github.com/moffa90/go-spimem/worker"
)

func newDetectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Identify the connected chip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, nil, func(s *session) error {
				return s.detect()
			})
		},
	}
}

func newReadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read FILE",
		Short: "Copy the whole chip into FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := artifact.New(afero.NewOsFs(), args[0])
			return withSession(cmd, opts, file, func(s *session) error {
				if err := s.detect(); err != nil {
					return err
				}
				if err := file.Create(); err != nil {
					return err
				}
				if err := s.run(worker.ModeRead); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "read %s into %s\n",
					humanize.IBytes(uint64(s.flash.Size())), file.Path())
				return nil
			})
		},
	}
}

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE",
		Short: "Compare the chip with FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := artifact.New(afero.NewOsFs(), args[0])
			return withSession(cmd, opts, file, func(s *session) error {
				if err := s.detect(); err != nil {
					return err
				}
				if size := file.Size(); size != s.flash.Size() {
					s.log.Warn().
						Str("file", humanize.IBytes(uint64(size))).
						Str("chip", humanize.IBytes(uint64(s.flash.Size()))).
						Msg("sizes differ, comparing the common range")
				}
				if err := s.run(worker.ModeVerify); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s matches the chip\n", file.Path())
				return nil
			})
		},
	}
}

func newEraseCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "erase",
		Short: "Erase the whole chip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, nil, func(s *session) error {
				if err := s.detect(); err != nil {
					return err
				}
				if err := s.run(worker.ModeChipErase); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "chip erased")
				return nil
			})
		},
	}
}
