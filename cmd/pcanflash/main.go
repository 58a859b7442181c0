// Command pcanflash reprograms the firmware of CAN-attached PCAN router
// modules over a SocketCAN interface.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pcan-tools/go-pcanflash/flasher"
	"github.com/pcan-tools/go-pcanflash/fwimage"
	"github.com/pcan-tools/go-pcanflash/hwdb"
	"github.com/pcan-tools/go-pcanflash/pcan"
)

var (
	flagFile     string
	flagModuleID int
	flagQuery    bool
	flagReset    bool
	flagDryRun   bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "pcanflash <interface>",
	Short:         "flash program for PCAN routers",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "binary file to flash")
	rootCmd.Flags().IntVarP(&flagModuleID, "id", "i", flasher.NoModuleID, "skip question when discovering multiple ids")
	rootCmd.Flags().BoolVarP(&flagQuery, "query", "q", false, "just query modules and quit")
	rootCmd.Flags().BoolVarP(&flagReset, "reset", "r", false, "reset module after flashing")
	rootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "d", false, "dry run - skip erase/write commands")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagQuery == (flagFile != "") {
		return fmt.Errorf("either --file or --query must be given")
	}

	log := logrus.New()
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	conn, err := pcan.Dial(ctx, args[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	opts := []flasher.Option{
		flasher.WithLogger(&logrusAdapter{log: log}),
		flasher.WithModuleID(flagModuleID),
		flasher.WithSelector(promptForModule),
		flasher.WithForceReset(flagReset),
		flasher.WithDryRun(flagDryRun),
	}

	if flagQuery {
		sess := flasher.New(conn, opts...)
		modules, err := sess.Discover(ctx)
		if err != nil {
			return err
		}
		printModules(modules)
		return nil
	}

	img, err := fwimage.Open(flagFile, 0)
	if err != nil {
		return err
	}
	defer img.Close()

	bar := newWriteProgress(img.Size())
	opts = append(opts, flasher.WithProgressCallback(bar.update))

	sess := flasher.New(conn, opts...)
	if err := sess.Flash(ctx, img); err != nil {
		bar.abort()
		return err
	}
	fmt.Println("\ndone.")
	return nil
}

// printModules renders the discovery result for query-only mode.
func printModules(modules []*flasher.Module) {
	fmt.Println("\nfound modules:")
	for _, mod := range modules {
		fmt.Printf("\nmodule id %02d (ppcan hw id %d)\n", mod.ID, mod.Announcement.PPCANID)
		fmt.Printf(" - date %s bootloader %s\n", mod.Announcement.BuildDate(), mod.Announcement.BootloaderVersion())
		fmt.Printf(" - hardware %d (%s) flash type %d (%s)\n",
			mod.HardwareType, mod.Name(),
			mod.FlashType, hwdb.FlashTypeName(mod.FlashType))
	}
	fmt.Println()
}

// promptForModule asks the operator to pick a module when several were
// discovered and none was requested on the command line.
func promptForModule(modules []*flasher.Module) (int, error) {
	printModules(modules)
	fmt.Print("multiple modules found - please provide module id: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("read module id: %w", err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("invalid module id %q", strings.TrimSpace(line))
	}
	return id, nil
}

// logrusAdapter implements flasher.Logger on a logrus logger.
type logrusAdapter struct {
	log *logrus.Logger
}

func (l *logrusAdapter) Debug(msg string, kv ...interface{}) { l.log.WithFields(fields(kv)).Debug(msg) }
func (l *logrusAdapter) Info(msg string, kv ...interface{})  { l.log.WithFields(fields(kv)).Info(msg) }
func (l *logrusAdapter) Warn(msg string, kv ...interface{})  { l.log.WithFields(fields(kv)).Warn(msg) }
func (l *logrusAdapter) Error(msg string, kv ...interface{}) { l.log.WithFields(fields(kv)).Error(msg) }

// fields turns alternating key-value pairs into logrus fields.
func fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		f[key] = kv[i+1]
	}
	return f
}
