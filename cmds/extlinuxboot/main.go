package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemboot/extlinuxboot/pkg/booter"
	"github.com/systemboot/extlinuxboot/pkg/bootfs"
	"github.com/systemboot/extlinuxboot/pkg/device"
	"github.com/systemboot/extlinuxboot/pkg/handoff"
	"github.com/systemboot/extlinuxboot/pkg/measure"
	"github.com/systemboot/extlinuxboot/pkg/platform"
	"github.com/systemboot/extlinuxboot/pkg/recovery"
)

// errNoBooter is returned when no booter accepts the --entry file.
var errNoBooter = errors.New("no booter accepts the boot entry")

var newRecoverer = recovery.New

type options struct {
	roots        []string
	platformFile string
	dtbFiles     []string
	entryFile    string
	dryRun       bool
	measure      bool
	tpmDevice    string
	onFailure    string
	debug        bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "extlinuxboot",
		Short:         "Boot the kernel described by extlinux/extlinux.conf",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(opts.debug)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			undo := zap.ReplaceGlobals(log)
			defer undo()

			recoverer, err := newRecoverer(opts.onFailure, log)
			if err != nil {
				return err
			}
			if err := boot(opts, log); err != nil {
				if rerr := recoverer.Recover(err.Error()); rerr != nil {
					log.Error("Recovery failed", zap.Error(rerr))
				}
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.roots, "root", "r", []string{"/boot"}, "Directory holding extlinux/extlinux.conf, may be repeated")
	flags.StringVarP(&opts.platformFile, "platform", "p", "", "YAML file with the platform memory layout")
	flags.StringSliceVar(&opts.dtbFiles, "dtb-file", nil, "Device tree candidate for fdtdir, may be repeated")
	flags.StringVarP(&opts.entryFile, "entry", "e", "", "JSON boot entry to use instead of the flags")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Do everything except booting the loaded kernel")
	flags.BoolVar(&opts.measure, "measure", false, "Measure the config and images into the TPM")
	flags.StringVar(&opts.tpmDevice, "tpm-device", measure.DefaultDevice, "TPM device used with --measure")
	flags.StringVar(&opts.onFailure, "on-failure", "continue", "What to do when no root boots: continue, reboot or poweroff")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Print debug output")
	return cmd
}

func boot(opts options, log *zap.Logger) error {
	b, err := newBooter(opts, log)
	if err != nil {
		log.Error("Cannot set up booter", zap.Error(err))
		return err
	}
	if err := b.Boot(); err != nil {
		log.Error("Boot failed", zap.String("booter", b.TypeName()), zap.Error(err))
		return err
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newBooter(opts options, log *zap.Logger) (booter.Booter, error) {
	if opts.entryFile != "" {
		config, err := os.ReadFile(opts.entryFile)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		b := booter.GetBooterFor(booter.BootEntry{Name: opts.entryFile, Config: config})
		if _, ok := b.(*booter.NullBooter); ok {
			return nil, errors.Wrap(errNoBooter, opts.entryFile)
		}
		return b, nil
	}

	p, err := platform.Load(opts.platformFile)
	if err != nil {
		return nil, err
	}
	ram := platform.NewRAM()
	eb := &booter.ExtlinuxBooter{
		Type:     "extlinux",
		Roots:    opts.roots,
		DTBFiles: opts.dtbFiles,
		FS:       bootfs.OS(),
		Platform: p,
		Memory:   ram,
		Log:      log,
		Device: func() (*device.Descriptor, error) {
			return device.FromProcDeviceTree(afero.NewOsFs())
		},
		Mounts: afero.NewOsFs(),
	}
	if opts.dryRun {
		eb.Handoff = &handoff.DryRun{Log: log}
	} else {
		eb.Handoff = handoff.NewKexec(ram, log)
	}
	if opts.measure {
		eb.Measurer = &measure.TPM{Device: opts.tpmDevice}
	}
	return eb, nil
}
