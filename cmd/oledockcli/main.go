package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oledock/oledock/internal/bitmap"
	"github.com/oledock/oledock/internal/device"
	"github.com/oledock/oledock/internal/draw"
	"github.com/oledock/oledock/internal/version"
)

const textFps = 30

func main() {

	// Logger
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	mainCommand := filepath.Base(os.Args[0])

	// Usage
	flag.Usage = func() {
		fmt.Printf("\nUsage: %s [OPTIONS] COMMAND\n", mainCommand)
		fmt.Printf("\nDraw on the Arctis Nova Pro dock OLED screen\n")
		fmt.Printf("\nOptions:\n")
		flag.PrintDefaults()
		fmt.Printf("\nCommands:\n")
		fmt.Printf("  clear        Clear the screen\n")
		fmt.Printf("  fill         Fill the screen\n")
		fmt.Printf("  text         Show text\n")
		fmt.Printf("  img          Show an image\n")
		fmt.Printf("  anim         Play an animated image\n")
		fmt.Printf("  brightness   Set the screen brightness\n")
		fmt.Printf("  devices      List connected docks\n")
		fmt.Printf("  version      Show the version number\n")
		fmt.Printf("\nRun '%s COMMAND --help' for more information on a command.\n", mainCommand)
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	args := flag.Args()[1:]

	switch flag.Arg(0) {
	case "clear":
		clearCommand(false)
	case "fill":
		clearCommand(true)
	case "text":
		textCommand(mainCommand, args)
	case "img":
		imgCommand(mainCommand, args)
	case "anim":
		animCommand(mainCommand, args)
	case "brightness":
		brightnessCommand(mainCommand, args)
	case "devices":
		err := device.DumpDevices(os.Stdout)
		if err != nil {
			logrus.Fatalf("Unable to list devices: %v", err)
		}
	case "version":
		fmt.Printf("Version %s\n", version.AppVersion.String())
	default:
		fmt.Printf("\n%s is not an oledock command\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func connect() *device.Device {
	dev, err := device.Connect()
	if err != nil {
		logrus.Fatalf("Unable to connect to the dock: %v", err)
	}
	return dev
}

func clearCommand(on bool) {
	dev := connect()
	defer dev.Close()

	w, h := dev.Size()
	err := dev.Draw(bitmap.New(w, h, on), 0, 0)
	if err != nil {
		logrus.Fatalf("Unable to draw: %v", err)
	}
}

func brightnessCommand(mainCommand string, args []string) {
	brightnessCmd := flag.NewFlagSet("brightness", flag.ExitOnError)
	brightnessCmd.Usage = func() {
		fmt.Printf("\nUsage: %s brightness VALUE\n", mainCommand)
		fmt.Printf("\nSet the screen brightness, from 1 to 10\n")
	}
	brightnessCmd.Parse(args)
	if brightnessCmd.NArg() != 1 {
		brightnessCmd.Usage()
		os.Exit(1)
	}
	value, err := strconv.Atoi(brightnessCmd.Arg(0))
	if err != nil {
		brightnessCmd.Usage()
		os.Exit(1)
	}

	dev := connect()
	defer dev.Close()

	err = dev.SetBrightness(value)
	if err != nil {
		logrus.Fatalf("Unable to set brightness: %v", err)
	}
}

// optionalPosition returns pointers for the x/y flags that were actually
// set, leaving unset axes centered.
func optionalPosition(fs *flag.FlagSet, x, y *int) (*int, *int) {
	var px, py *int
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "x":
			px = x
		case "y":
			py = y
		}
	})
	return px, py
}

func textCommand(mainCommand string, args []string) {
	textCmd := flag.NewFlagSet("text", flag.ExitOnError)
	xFlag := textCmd.Int("x", 0, "Horizontal position (default: centered)")
	yFlag := textCmd.Int("y", 0, "Vertical position of the first line (default: centered)")
	durFlag := textCmd.Duration("t", 5*time.Second, "How long to keep the text up")
	stdinFlag := textCmd.Bool("i", false, "Read screens from stdin")
	delimFlag := textCmd.String("delim", "---", "Screen delimiter for stdin mode")
	textCmd.Usage = func() {
		fmt.Printf("\nUsage: %s text [OPTIONS] TEXT\n", mainCommand)
		fmt.Printf("\nShow text on the screen. With -i, read screens from stdin,\n")
		fmt.Printf("separated by the delimiter line, replacing the text as they come.\n")
		fmt.Printf("\nOptions:\n")
		textCmd.PrintDefaults()
	}
	textCmd.Parse(args)

	x, y := optionalPosition(textCmd, xFlag, yFlag)

	dev := connect()
	defer dev.Close()
	dd := draw.NewDrawDevice(dev, textFps)
	dd.Play()

	if *stdinFlag {
		var ids []draw.LayerID
		var lines []string
		show := func() {
			ids = dd.ReplaceLayers(ids, dd.TextLayers(strings.Join(lines, "\n"), x, y))
			lines = lines[:0]
		}
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == *delimFlag {
				show()
			} else {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			show()
		}
	} else {
		if textCmd.NArg() == 0 {
			textCmd.Usage()
			os.Exit(1)
		}
		dd.AddText(strings.Join(textCmd.Args(), " "), x, y)
	}

	time.Sleep(*durFlag)
	dd.Stop()
}

func imgCommand(mainCommand string, args []string) {
	imgCmd := flag.NewFlagSet("img", flag.ExitOnError)
	thresholdFlag := imgCmd.Uint("T", 0x80, "Luminance threshold, 0 to 255")
	xFlag := imgCmd.Int("x", 0, "Horizontal position (default: centered)")
	yFlag := imgCmd.Int("y", 0, "Vertical position (default: centered)")
	imgCmd.Usage = func() {
		fmt.Printf("\nUsage: %s img [OPTIONS] FILE\n", mainCommand)
		fmt.Printf("\nShow an image on the screen\n")
		fmt.Printf("\nOptions:\n")
		imgCmd.PrintDefaults()
	}
	imgCmd.Parse(args)
	if imgCmd.NArg() != 1 {
		imgCmd.Usage()
		os.Exit(1)
	}

	frames, err := draw.DecodeFrames(imgCmd.Arg(0), uint8(*thresholdFlag))
	if err != nil {
		logrus.Fatalf("Unable to load image: %v", err)
	}
	bm := frames[0].Bitmap

	dev := connect()
	defer dev.Close()

	x, y := optionalPosition(imgCmd, xFlag, yFlag)
	w, h := dev.Size()
	posX, posY := (w-bm.W)/2, (h-bm.H)/2
	if x != nil {
		posX = *x
	}
	if y != nil {
		posY = *y
	}

	err = dev.Draw(bm, posX, posY)
	if err != nil {
		logrus.Fatalf("Unable to draw: %v", err)
	}
}

func animCommand(mainCommand string, args []string) {
	animCmd := flag.NewFlagSet("anim", flag.ExitOnError)
	thresholdFlag := animCmd.Uint("T", 0x80, "Luminance threshold, 0 to 255")
	rateFlag := animCmd.Float64("r", 0, "Frame rate (default: the file's own delays)")
	loopsFlag := animCmd.Int("l", 1, "Number of loops, 0 for endless")
	xFlag := animCmd.Int("x", 0, "Horizontal position (default: centered)")
	yFlag := animCmd.Int("y", 0, "Vertical position (default: centered)")
	animCmd.Usage = func() {
		fmt.Printf("\nUsage: %s anim [OPTIONS] FILE\n", mainCommand)
		fmt.Printf("\nPlay an animated image on the screen\n")
		fmt.Printf("\nOptions:\n")
		animCmd.PrintDefaults()
	}
	animCmd.Parse(args)
	if animCmd.NArg() != 1 {
		animCmd.Usage()
		os.Exit(1)
	}

	frames, err := draw.DecodeFrames(animCmd.Arg(0), uint8(*thresholdFlag))
	if err != nil {
		logrus.Fatalf("Unable to load image: %v", err)
	}

	dev := connect()
	defer dev.Close()

	x, y := optionalPosition(animCmd, xFlag, yFlag)
	w, h := dev.Size()

	for loop := 0; *loopsFlag == 0 || loop < *loopsFlag; loop++ {
		for _, frame := range frames {
			bm := frame.Bitmap
			posX, posY := (w-bm.W)/2, (h-bm.H)/2
			if x != nil {
				posX = *x
			}
			if y != nil {
				posY = *y
			}
			err = dev.Draw(bm, posX, posY)
			if err != nil {
				logrus.Fatalf("Unable to draw: %v", err)
			}

			delay := frame.Delay
			if *rateFlag > 0 {
				delay = time.Duration(float64(time.Second) / *rateFlag)
			}
			if delay <= 0 {
				delay = time.Second
			}
			time.Sleep(delay)
		}
	}
}
