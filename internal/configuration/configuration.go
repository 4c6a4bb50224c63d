/*
Copyright The solrfab Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package configuration contains the configuration of solrfab, read from
// command line flags, SOLRFAB_ environment variables and an optional
// YAML file, in this order of precedence
package configuration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin"
	"github.com/viable-hartman/solrfab/pkg/coordination"
	"github.com/viable-hartman/solrfab/pkg/remote"
	"github.com/viable-hartman/solrfab/pkg/restart"
)

// EnvPrefix is the prefix of the environment variables overriding the flags
const EnvPrefix = "SOLRFAB"

const (
	// DefaultZooKeeperHost is the connection string used when none is given
	DefaultZooKeeperHost = "localhost:2181/solr"

	// DefaultLiveTimeout is the default number of seconds the node has to
	// register again after the restart
	DefaultLiveTimeout = 240

	// DefaultReplicaTimeout is the default number of seconds the replicas
	// have to become active again
	DefaultReplicaTimeout = 600
)

// ErrInvalidConfiguration is returned when the configuration cannot be used
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Data is the configuration of a solrfab command
type Data struct {
	// Host is the host running the Solr node
	Host string `mapstructure:"host"`

	// HostPort is the port of the Solr node
	HostPort string `mapstructure:"host-port"`

	// Force skips the liveness and replica checks before restarting
	Force bool `mapstructure:"force"`

	// LiveTimeout is the number of seconds to wait for the node to
	// register again
	LiveTimeout int `mapstructure:"ln-timeout"`

	// ReplicaTimeout is the number of seconds to wait for the replicas
	// to become active
	ReplicaTimeout int `mapstructure:"rn-timeout"`

	// PollInterval is the pause between two probes while waiting
	PollInterval time.Duration `mapstructure:"poll-interval"`

	// ZooKeeperHost is the ZooKeeper connection string, chroot included
	ZooKeeperHost string `mapstructure:"zk-host"`

	// ZooKeeperSessionTimeout is the ZooKeeper session timeout
	ZooKeeperSessionTimeout time.Duration `mapstructure:"zk-session-timeout"`

	// ZooKeeperRetries is the number of attempts of every ZooKeeper operation
	ZooKeeperRetries int `mapstructure:"zk-retries"`

	// CollectionState enables the reading of the per-collection state
	// documents
	CollectionState bool `mapstructure:"collection-state"`

	// RestartCommand is the command line restarting the Solr service
	RestartCommand string `mapstructure:"restart-command"`

	SSHUser     string   `mapstructure:"ssh-user"`
	SSHPort     int      `mapstructure:"ssh-port"`
	SSHIdentity string   `mapstructure:"ssh-identity"`
	SSHOptions  []string `mapstructure:"ssh-option"`

	// Sudo runs the restart command through "sudo -n"
	Sudo bool `mapstructure:"sudo"`

	// DryRun only pretends to deregister and restart the node
	DryRun bool `mapstructure:"dry-run"`

	// Output is the result rendering format
	Output plugin.OutputFormat `mapstructure:"output"`

	// PushgatewayURL is where the run metrics are pushed, if set
	PushgatewayURL string `mapstructure:"pushgateway-url"`

	// Trace enables the OpenTelemetry tracing to stderr
	Trace bool `mapstructure:"trace"`
}

// AddConnectionFlags adds the flags selecting the Solr node and the
// ZooKeeper ensemble
func AddConnectionFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "YAML configuration file with the same keys as the flags")
	flags.String("host", "", "Host running the Solr node")
	flags.String("host-port", restart.DefaultPort, "Port of the Solr node")
	flags.String("zk-host", DefaultZooKeeperHost,
		"ZooKeeper connection string, chroot included, e.g. zk1:2181,zk2:2181/solr")
	flags.Duration("zk-session-timeout", coordination.DefaultOptions.SessionTimeout,
		"ZooKeeper session timeout")
	flags.Int("zk-retries", coordination.DefaultOptions.Retries,
		"Attempts of every ZooKeeper operation")
	flags.Bool("collection-state", true, "Also read the per-collection state documents")
	flags.StringP("output", "o", plugin.OutputFormatText, "Output format. One of text|json|yaml")
}

// AddRestartFlags adds the flags of the restart command
func AddRestartFlags(flags *pflag.FlagSet) {
	AddConnectionFlags(flags)
	flags.Bool("force", false, "Restart even if the node is not live or its replicas are not active")
	flags.Int("ln-timeout", DefaultLiveTimeout, "Seconds to wait for the node to register again")
	flags.Int("rn-timeout", DefaultReplicaTimeout, "Seconds to wait for the replicas to become active")
	flags.Duration("poll-interval", restart.DefaultPollInterval, "Pause between two probes while waiting")
	flags.String("restart-command", remote.DefaultRestartCommand, "Command restarting the Solr service")
	flags.String("ssh-user", "", "Remote user, the ssh default when empty")
	flags.Int("ssh-port", 0, "Remote ssh port, the ssh default when zero")
	flags.String("ssh-identity", "", "Private key used to connect")
	flags.StringSlice("ssh-option", nil, "Additional ssh options, in the ssh_config format")
	flags.Bool("sudo", true, "Run the restart command through sudo")
	flags.Bool("dry-run", false, "Only pretend to deregister and restart the node")
	flags.String("pushgateway-url", "", "Push the run metrics to this Prometheus Pushgateway")
	flags.Bool("trace", false, "Write the OpenTelemetry trace of the run to stderr")
}

// Load reads the configuration from the flags, the environment and the
// configuration file, if one was given
func Load(flags *pflag.FlagSet) (*Data, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("while reading %s: %w", configFile, err)
		}
	}

	data := &Data{}
	if err := v.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return data, nil
}

// ValidateConnection checks the settings shared by every command: the
// output format and the ZooKeeper connection. The host is checked by the
// request itself.
func (d *Data) ValidateConnection() error {
	return joinInvalid(d.connectionErrors())
}

// Validate checks the configuration can be used to restart a node
func (d *Data) Validate() error {
	errs := d.connectionErrors()

	if d.LiveTimeout < 0 {
		errs = append(errs, errors.New("ln-timeout must not be negative"))
	}
	if d.ReplicaTimeout < 0 {
		errs = append(errs, errors.New("rn-timeout must not be negative"))
	}
	if d.PollInterval <= 0 {
		errs = append(errs, errors.New("poll-interval must be positive"))
	}
	if d.SSHPort < 0 || d.SSHPort > 65535 {
		errs = append(errs, fmt.Errorf("ssh-port %d out of range", d.SSHPort))
	}
	if _, err := d.ParsedRestartCommand(); err != nil {
		errs = append(errs, fmt.Errorf("restart-command: %w", err))
	}

	return joinInvalid(errs)
}

func (d *Data) connectionErrors() []error {
	var errs []error

	if err := plugin.ValidateOutputFormat(d.Output); err != nil {
		errs = append(errs, err)
	}
	if d.ZooKeeperHost == "" {
		errs = append(errs, errors.New("zk-host must not be empty"))
	} else if _, _, err := coordination.ParseConnectionString(d.ZooKeeperHost); err != nil {
		errs = append(errs, err)
	}
	if d.ZooKeeperSessionTimeout <= 0 {
		errs = append(errs, errors.New("zk-session-timeout must be positive"))
	}
	if d.ZooKeeperRetries < 1 {
		errs = append(errs, errors.New("zk-retries must be at least 1"))
	}

	return errs
}

func joinInvalid(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
}

// Request is the restart request described by the configuration
func (d *Data) Request() restart.Request {
	return restart.Request{
		Host:           d.Host,
		Port:           d.HostPort,
		Force:          d.Force,
		LiveTimeout:    time.Duration(d.LiveTimeout) * time.Second,
		ReplicaTimeout: time.Duration(d.ReplicaTimeout) * time.Second,
	}
}

// CoordinationOptions are the options of the ZooKeeper client
func (d *Data) CoordinationOptions() coordination.Options {
	options := coordination.DefaultOptions
	options.SessionTimeout = d.ZooKeeperSessionTimeout
	options.Retries = d.ZooKeeperRetries
	return options
}

// ParsedRestartCommand splits the restart command line into its words
func (d *Data) ParsedRestartCommand() ([]string, error) {
	return remote.ParseCommand(d.RestartCommand)
}

// Executor is the ssh executor reaching the Solr hosts
func (d *Data) Executor() *remote.SSH {
	return &remote.SSH{
		User:         d.SSHUser,
		Port:         d.SSHPort,
		IdentityFile: d.SSHIdentity,
		Options:      d.SSHOptions,
		Sudo:         d.Sudo,
	}
}
