package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/msgrelayer/common"
	"github.com/0xPolygon/msgrelayer/log"
	"github.com/0xPolygon/msgrelayer/messagesync"
	"github.com/0xPolygon/msgrelayer/treeprocessor"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagComponents is the flag for components.
	FlagComponents = "components"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"
	// FlagMinConfig is the flag to print only the mandatory vars
	FlagMinConfig = "min"

	EnvVarPrefix       = "MSGRELAYER"
	ConfigType         = "toml"
	SaveConfigFileName = "msgrelayer_config.toml"

	DefaultCreationFilePermissions = os.FileMode(0600)
)

var (
	ErrUnknownOriginDomain = errors.New("unknown origin domain")
	ErrMissingAddress      = errors.New("missing contract address")
	ErrInvalidBatchSize    = errors.New("invalid batch size")
)

/*
Config represents the configuration of the msgrelayer node
The file is [TOML format]

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// Common Config that affects all the services
	Common common.Config
	// MessageSync is the config of the synchronizer of the mailbox and merkle tree hook events
	MessageSync messagesync.Config
	// MerkleTree is the config of the local merkle tree built from the synced leaves
	MerkleTree treeprocessor.Config
	// RPC is the config for the RPC server
	RPC jRPC.Config
}

// Validate checks the fields that can't be checked by the decoder
func (c *Config) Validate() error {
	if _, err := common.DomainFromName(c.Common.OriginDomain); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownOriginDomain, c.Common.OriginDomain)
	}
	if c.MessageSync.MailboxAddr == (ethcommon.Address{}) {
		return fmt.Errorf("%w: MessageSync.MailboxAddr", ErrMissingAddress)
	}
	if c.MessageSync.MerkleTreeHookAddr == (ethcommon.Address{}) {
		return fmt.Errorf("%w: MessageSync.MerkleTreeHookAddr", ErrMissingAddress)
	}
	if c.MerkleTree.BatchSize == 0 {
		return fmt.Errorf("%w: MerkleTree.BatchSize must be greater than 0", ErrInvalidBatchSize)
	}
	return nil
}

// Load loads the configuration
func Load(ctx *cli.Context) (*Config, error) {
	configFilePath := ctx.StringSlice(FlagCfg)
	filesData, err := readFiles(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading files:  Err:%w", err)
	}
	saveConfigPath := ctx.String(FlagSaveConfigPath)
	return LoadFile(filesData, saveConfigPath)
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err:%w", file, err)
		}
		fileContent := string(content)
		fileExtension := strings.TrimPrefix(filepath.Ext(file), ".")
		if fileExtension != ConfigType {
			fileContent, err = convertFileToToml(fileContent, fileExtension)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err:%w", file, fileExtension, err)
			}
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

// LoadFileFromString decodes an already rendered config
func LoadFileFromString(configFileData string, configType string) (*Config, error) {
	cfg := &Config{}
	if err := loadString(cfg, configFileData, configType, true, EnvVarPrefix); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfigToString returns the config as JSON
func SaveConfigToString(cfg Config) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoadFile renders the default vars and values merged with files, optionally
// saves the result on saveConfigPath and decodes it
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	fileData := make([]FileData, 0, len(files)+2) //nolint:mnd
	fileData = append(fileData, FileData{Name: "default_vars", Content: DefaultVars})
	fileData = append(fileData, FileData{Name: "default_values", Content: DefaultValues})
	fileData = append(fileData, files...)

	renderer := NewRenderer(fileData, EnvVarPrefix)
	renderedCfg, err := renderer.Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		fullPath := filepath.Join(saveConfigPath, SaveConfigFileName)
		err = os.WriteFile(fullPath, []byte(renderedCfg), DefaultCreationFilePermissions)
		if err != nil {
			err = fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
			log.Error(err)
			return nil, err
		}
	}
	cfg, err := LoadFileFromString(renderedCfg, ConfigType)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadString(cfg *Config, configData string, configType string, allowEnvVars bool, envPrefix string) error {
	v := viper.New()
	v.SetConfigType(configType)
	if allowEnvVars {
		replacer := strings.NewReplacer(".", "_")
		v.SetEnvKeyReplacer(replacer)
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}
	if err := v.ReadConfig(bytes.NewBuffer([]byte(configData))); err != nil {
		return err
	}
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}
	if err := v.Unmarshal(cfg, decodeHooks...); err != nil {
		return err
	}

	expectedKeys := expectedConfigKeys()
	for _, key := range v.AllKeys() {
		if !contains(expectedKeys, key) {
			log.Debugf("field %s in config file is not used", key)
		}
	}
	return nil
}

// expectedConfigKeys are the keys that are decoded into Config
func expectedConfigKeys() []string {
	v := viper.New()
	v.SetConfigType(ConfigType)
	rendered, err := NewRenderer([]FileData{
		{Name: "default_mandatory_vars", Content: DefaultMandatoryVars},
		{Name: "default_vars", Content: DefaultVars},
		{Name: "default_values", Content: DefaultValues},
	}, EnvVarPrefix).Render()
	if err != nil {
		return nil
	}
	if err := v.ReadConfig(bytes.NewBufferString(rendered)); err != nil {
		return nil
	}
	return v.AllKeys()
}

// Schema returns the JSON schema of Config
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
		Anonymous:                 true,
		// most sections are named Config, definitions are keyed by the type name
		Namer: qualifiedTypeName,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "msgrelayer config file"
	return json.MarshalIndent(schema, "", "  ")
}

func qualifiedTypeName(t reflect.Type) string {
	if t.Name() == "" || t.PkgPath() == "" {
		return ""
	}
	return t.PkgPath() + "." + t.Name()
}
