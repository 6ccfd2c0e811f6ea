package config

const (
	defaultConfigPath          = "~/.config/baylight/config.toml"
	defaultSysfsRoot           = "/sys"
	defaultStateDir            = "~/.local/state/baylight"
	defaultLogDir              = "~/.local/state/baylight/logs"
	defaultBays                = 4
	defaultStorageSubsystem    = "scsi"
	defaultStorageDevType      = "scsi_device"
	defaultHostSubsystem       = "scsi"
	defaultHostDevType         = "scsi_host"
	defaultInternalBus         = "pci"
	defaultIndicatorDriver     = "sysfs"
	defaultLEDsDir             = "/sys/class/leds"
	defaultLEDNamePattern      = "baylight:{color}:bay{bay}"
	defaultIndicatorColor      = "blue"
	defaultIndicatorBrightness = -1
	defaultProbeTimeoutSeconds = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"

	// MaxBrightness is the upper end of the brightness scale accepted by the
	// indicator drivers.
	MaxBrightness = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SysfsRoot: defaultSysfsRoot,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Enclosure: Enclosure{
			Bays:             defaultBays,
			StorageSubsystem: defaultStorageSubsystem,
			StorageDevType:   defaultStorageDevType,
			HostSubsystem:    defaultHostSubsystem,
			HostDevType:      defaultHostDevType,
			InternalBus:      defaultInternalBus,
		},
		Indicator: Indicator{
			Driver:              defaultIndicatorDriver,
			LEDsDir:             defaultLEDsDir,
			NamePattern:         defaultLEDNamePattern,
			Color:               defaultIndicatorColor,
			Brightness:          defaultIndicatorBrightness,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
			ClearOnStart:        true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
