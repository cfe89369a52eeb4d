package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sdn-controller/pkg/model"
)

// Options locate the MySQL server holding operator accounts.
type Options struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (o Options) dsn() string {
	if o.DSN != "" {
		return o.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", o.User, o.Password, o.Host, o.Port, o.Name)
}

// Init connects to MySQL and migrates the operator table. A missing database
// is created when the DSN was assembled from parts.
func Init(o Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	db, err := gorm.Open(mysql.Open(o.dsn()), cfg)
	if err != nil {
		if o.DSN != "" || !strings.Contains(err.Error(), "Unknown database") {
			return nil, err
		}
		if cerr := createDatabase(o); cerr != nil {
			return nil, fmt.Errorf("create database failed: %w", cerr)
		}
		db, err = gorm.Open(mysql.Open(o.dsn()), cfg)
		if err != nil {
			return nil, err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	if err := db.AutoMigrate(&model.Operator{}); err != nil {
		return nil, err
	}
	return db, nil
}

func createDatabase(o Options) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/", o.User, o.Password, o.Host, o.Port)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4", o.Name))
	return err
}
