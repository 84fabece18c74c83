package dbquery

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/biyonik/go-dbquery/backend"
	"github.com/biyonik/go-dbquery/dialect"
)

/*
 * ----------------------------------------------------------------------------
 * DBQUERY TYPE DEFINITIONS
 * ----------------------------------------------------------------------------
 *
 * Bu dosya, dbquery paketinin veri taşıma ve yapılandırma katmanını oluşturur.
 *
 * 1. Row: Backend'den dönen her satır kolon adı → değer eşlemesidir.
 * 2. Config: Hangi aileye, nereye ve hangi kullanıcıyla bağlanılacağı.
 *    Eksik alanlar aileye özgü varsayılanlarla doldurulur.
 *
 * Driver etiketi yalnızca bir kez, Open sırasında çözülür; sonrasında tüm
 * davranış seçilen Backend üzerinden akar.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// Row, okunan tek bir satırı veya INSERT/UPDATE için kolon → değer verisini taşır.
type Row = backend.Row

// ----------------------------------------------------------------------------
// Configuration Types
// ----------------------------------------------------------------------------

// Config, veritabanı bağlantısının yapılandırma şemasıdır.
//
// Tanınan anahtarlar: driver (sqlite | mysql | postgresql), database, host,
// port, user, password. Boş bırakılan alanlar WithDefaults ile doldurulur.
type Config struct {
	Driver   string `mapstructure:"driver"`   // sqlite, mysql, postgresql (ve takma adları)
	Database string `mapstructure:"database"` // Veritabanı adı veya SQLite dosya yolu
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Aileye özgü varsayılanlar.
const (
	DefaultHost         = "localhost"
	DefaultMySQLUser    = "root"
	DefaultMySQLPort    = 3306
	DefaultPostgresUser = "postgres"
	DefaultPostgresPort = 5432
	DefaultSQLitePath   = ":memory:"
)

// ConfigFromMap, anahtar → değer eşlemesinden bir Config üretir.
// Port gibi alanlar string olarak da verilebilir ("5432").
//
//	cfg, err := dbquery.ConfigFromMap(map[string]any{
//	    "driver":   "mysql",
//	    "database": "app",
//	    "port":     "3307",
//	})
func ConfigFromMap(m map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Config{}, newConfigError(ErrInvalidArguments, "config", m, err)
	}
	return cfg, nil
}

// WithDefaults, driver etiketini kanonik adına çevirir ve boş alanları aileye
// özgü varsayılanlarla doldurur. Bilinmeyen driver ErrUnsupportedDriver döner.
func (c Config) WithDefaults() (Config, error) {
	d, ok := dialect.Lookup(c.Driver)
	if !ok {
		return c, newConfigError(ErrUnsupportedDriver, "driver", c.Driver, nil)
	}
	c.Driver = d.Name

	switch d.Name {
	case dialect.NameSQLite:
		if c.Database == "" {
			c.Database = DefaultSQLitePath
		}
	case dialect.NameMySQL:
		c.Host = orDefault(c.Host, DefaultHost)
		c.User = orDefault(c.User, DefaultMySQLUser)
		if c.Port == 0 {
			c.Port = DefaultMySQLPort
		}
	case dialect.NamePostgreSQL:
		c.Host = orDefault(c.Host, DefaultHost)
		c.User = orDefault(c.User, DefaultPostgresUser)
		if c.Port == 0 {
			c.Port = DefaultPostgresPort
		}
	}
	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Dialect, yapılandırmanın işaret ettiği aile tanımını döndürür.
func (c Config) Dialect() (dialect.Dialect, error) {
	d, ok := dialect.Lookup(c.Driver)
	if !ok {
		return dialect.Dialect{}, newConfigError(ErrUnsupportedDriver, "driver", c.Driver, nil)
	}
	return d, nil
}

// DSN, seçilen sürücünün anlayacağı bağlantı dizesini üretir.
// Varsayılanlar uygulanmış olarak hesaplanır.
func (c Config) DSN() (string, error) {
	c, err := c.WithDefaults()
	if err != nil {
		return "", err
	}

	switch c.Driver {
	case dialect.NameMySQL:
		return c.mysql().DSN(), nil
	case dialect.NamePostgreSQL:
		return c.postgres().DSN(), nil
	default:
		return backend.SQLiteConfig{Database: c.Database}.DSN(), nil
	}
}

// NewBackend, driver etiketine göre uygun adaptörü oluşturur. Bağlantı açılmaz.
func (c Config) NewBackend(opts ...backend.Option) (backend.Backend, error) {
	c, err := c.WithDefaults()
	if err != nil {
		return nil, err
	}

	switch c.Driver {
	case dialect.NameSQLite:
		return backend.NewSQLite(backend.SQLiteConfig{Database: c.Database}, opts...), nil
	case dialect.NameMySQL:
		return backend.NewMySQL(c.mysql(), opts...), nil
	case dialect.NamePostgreSQL:
		return backend.NewPostgres(c.postgres(), opts...), nil
	default:
		return nil, newConfigError(ErrUnsupportedDriver, "driver", c.Driver, nil)
	}
}

func (c Config) mysql() backend.MySQLConfig {
	return backend.MySQLConfig{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
	}
}

func (c Config) postgres() backend.PostgresConfig {
	return backend.PostgresConfig{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
	}
}

// String, parolayı gizleyerek yapılandırmayı yazdırır.
func (c Config) String() string {
	password := ""
	if c.Password != "" {
		password = "***"
	}
	return fmt.Sprintf("driver=%s database=%s host=%s port=%d user=%s password=%s",
		c.Driver, c.Database, c.Host, c.Port, c.User, password)
}
