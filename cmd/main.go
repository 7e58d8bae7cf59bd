package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/equiledger/equiledger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name: "equiledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db_dir", Value: "./data/bolt", Usage: "bolt db dir path", EnvVars: []string{"DB_DIR"}},
			&cli.StringFlag{Name: "mysql", Value: "root@tcp(127.0.0.1:3306)/equiledger?charset=utf8mb4&parseTime=True&loc=Local", Usage: "mysql dsn", EnvVars: []string{"MYSQL"}},
			&cli.BoolFlag{Name: "sqlite", Value: false, Usage: "run with sqlite instead of mysql", EnvVars: []string{"SQLITE"}},
			&cli.StringFlag{Name: "sqlite_dir", Value: "./data/sqlite", Usage: "sqlite db dir path", EnvVars: []string{"SQLITE_DIR"}},

			&cli.BoolFlag{Name: "s3_flag", Value: false, Usage: "run with s3 store", EnvVars: []string{"S3_FLAG"}},
			&cli.StringFlag{Name: "s3_acc_key", Value: "", Usage: "s3 access key", EnvVars: []string{"S3_ACC_KEY"}},
			&cli.StringFlag{Name: "s3_secret_key", Value: "", Usage: "s3 secret key", EnvVars: []string{"S3_SECRET_KEY"}},
			&cli.StringFlag{Name: "s3_prefix", Value: "equiledger", Usage: "s3 bucket name prefix", EnvVars: []string{"S3_PREFIX"}},
			&cli.StringFlag{Name: "s3_region", Value: "ap-northeast-1", Usage: "s3 bucket region", EnvVars: []string{"S3_REGION"}},
			&cli.StringFlag{Name: "s3_endpoint", Value: "", Usage: "custom s3 endpoint", EnvVars: []string{"S3_ENDPOINT"}},

			&cli.BoolFlag{Name: "kafka", Value: false, Usage: "publish ledger events to kafka", EnvVars: []string{"KAFKA"}},
			&cli.StringFlag{Name: "kafka_uri", Value: "127.0.0.1:9092", EnvVars: []string{"KAFKA_URI"}},

			&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	l := equiledger.New(
		c.String("db_dir"), c.String("mysql"), c.String("sqlite_dir"), c.Bool("sqlite"),
		c.Bool("s3_flag"), c.String("s3_acc_key"), c.String("s3_secret_key"), c.String("s3_prefix"), c.String("s3_region"), c.String("s3_endpoint"),
		c.Bool("kafka"), c.String("kafka_uri"),
	)
	l.Run(c.String("port"))

	<-signals
	l.Close()

	return nil
}
