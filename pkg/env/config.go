package env

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"
)

var (
	configFile = os.Getenv("RCLINK_CONFIG")

	sectionsLock sync.Mutex
	sections     = make(map[string]interface{})
)

// Register binds a top-level section of the config file to target,
// usually the Default() config of a package.
func Register(section string, target interface{}) {
	sectionsLock.Lock()
	sections[section] = target
	sectionsLock.Unlock()
}

// Sections lists registered section names.
func Sections() []string {
	sectionsLock.Lock()
	defer sectionsLock.Unlock()
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file")
}

// ConfigFile returns the config file in use.
func ConfigFile() string {
	return configFile
}

// Load decodes YAML into the registered sections.
// Sections not present keep their values.
func Load(data []byte) error {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	sectionsLock.Lock()
	defer sectionsLock.Unlock()
	for name, node := range doc {
		target, ok := sections[name]
		if !ok {
			glog.Warningf("config: unknown section %q ignored", name)
			continue
		}
		if err := node.Decode(target); err != nil {
			return fmt.Errorf("config section %q: %w", name, err)
		}
	}
	return nil
}

// LoadFile loads a YAML config file.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Load(data)
}

// Parse parses command line flags and loads the config file.
// Flags explicitly set on the command line win over the file.
func Parse() error {
	return ParseFlags(flag.CommandLine, os.Args[1:])
}

// ParseFlags is Parse on a specific flag set.
func ParseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if configFile == "" {
		return nil
	}
	explicit := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})
	if err := LoadFile(configFile); err != nil {
		return err
	}
	for name, val := range explicit {
		if err := fs.Set(name, val); err != nil {
			return err
		}
	}
	glog.V(2).Infof("config loaded from %s", configFile)
	return nil
}

// MustParse calls Parse and fails on error.
func MustParse() {
	if err := Parse(); err != nil {
		log.Fatalln(err)
	}
}
