package handoff

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/u-root/u-root/pkg/dt"
	"go.uber.org/zap"

	"github.com/systemboot/extlinuxboot/pkg/platform"
)

// ErrBadDTB is returned when the staged device tree cannot be read.
var ErrBadDTB = errors.New("staged dtb is not a flattened device tree")

// Image is a chunk of memory to place at a physical address.
type Image struct {
	Addr uint64
	Data []byte
}

// Kexec boots the staged images through the running kernel's kexec
// interface. The command line and ramdisk window are written into the
// device tree's /chosen node before loading.
type Kexec struct {
	Memory platform.Memory
	Log    *zap.Logger

	load   func(entry uint64, images []Image) error
	reboot func() error
}

// Prepare collects the images described by args and patches the device
// tree.
func (k *Kexec) Prepare(args Args) ([]Image, error) {
	log := k.Log
	if log == nil {
		log = zap.NewNop()
	}

	kernel, err := k.Memory.Region(args.KernelAddr, args.KernelSize)
	if err != nil {
		return nil, err
	}
	dtb, err := k.Memory.Region(args.TagsAddr, args.TagsSize)
	if err != nil {
		return nil, err
	}

	patched, err := patchDTB(dtb, args)
	if err != nil {
		return nil, err
	}
	if args.RamdiskAddr > args.TagsAddr && uint64(len(patched)) > args.RamdiskAddr-args.TagsAddr {
		return nil, errors.Errorf("patched dtb of %d bytes overlaps the ramdisk at 0x%x", len(patched), args.RamdiskAddr)
	}
	log.Debug("Patched dtb", zap.Int("size", len(patched)))

	images := []Image{
		{Addr: args.KernelAddr, Data: kernel},
		{Addr: args.TagsAddr, Data: patched},
	}
	if args.RamdiskSize > 0 {
		ramdisk, err := k.Memory.Region(args.RamdiskAddr, args.RamdiskSize)
		if err != nil {
			return nil, err
		}
		images = append(images, Image{Addr: args.RamdiskAddr, Data: ramdisk})
	}
	return images, nil
}

// patchDTB writes the command line and the ramdisk window into /chosen. A
// zero sized ramdisk removes any initrd properties the dtb carried.
func patchDTB(dtb []byte, args Args) ([]byte, error) {
	tree, err := dt.ReadFDT(bytes.NewReader(dtb))
	if err != nil {
		return nil, errors.Wrap(ErrBadDTB, err.Error())
	}
	if tree.RootNode == nil {
		return nil, errors.Wrap(ErrBadDTB, "no root node")
	}

	chosen, ok := tree.NodeByName("chosen")
	if !ok {
		chosen = &dt.Node{Name: "chosen"}
		tree.RootNode.Children = append(tree.RootNode.Children, chosen)
	}

	bootargs := dt.PropertyString("bootargs", args.Cmdline)
	chosen.UpdateProperty(bootargs.Name, bootargs.Value)
	if args.RamdiskSize > 0 {
		start := dt.PropertyU64("linux,initrd-start", args.RamdiskAddr)
		end := dt.PropertyU64("linux,initrd-end", args.RamdiskAddr+args.RamdiskSize)
		chosen.UpdateProperty(start.Name, start.Value)
		chosen.UpdateProperty(end.Name, end.Value)
	} else {
		chosen.RemoveProperty("linux,initrd-start")
		chosen.RemoveProperty("linux,initrd-end")
	}

	var out bytes.Buffer
	if _, err := tree.Write(&out); err != nil {
		return nil, errors.Wrap(err, "writing dtb")
	}
	return out.Bytes(), nil
}

// Boot implements Handoff.
func (k *Kexec) Boot(args Args) error {
	if k.load == nil || k.reboot == nil {
		return errors.WithStack(ErrUnsupported)
	}
	images, err := k.Prepare(args)
	if err != nil {
		return err
	}
	if err := k.load(args.KernelAddr, images); err != nil {
		return errors.Wrap(err, "kexec load")
	}
	err = k.reboot()
	if err == nil {
		return errors.New("unexpectedly returned from Reboot() without error, the system did not reboot")
	}
	return errors.WithStack(err)
}
