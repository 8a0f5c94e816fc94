package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tomans/internal/backup"
	"github.com/hazadus/go-tomans/internal/utils"
)

// createBackupCommand создает команду backup с привязкой к экземпляру приложения
func (app *Application) createBackupCommand(ctx context.Context) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload a snapshot of the database to S3 storage",
		Long:  `Upload a consistent snapshot of favourites and playlists to S3 storage with progress tracking.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Создаем контекст с таймаутом для загрузки (10 минут)
			uploadCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.backupDatabase(uploadCtx, keep)
		},
	}
	cmd.Flags().IntVar(&keep, "prune", 0, "keep only the N most recent backups")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List uploaded backups",
		RunE: func(_ *cobra.Command, _ []string) error {
			service, err := app.backupService()
			if err != nil {
				return err
			}
			keys, err := service.List(ctx)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("📦 Резервных копий нет")
				return nil
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	})

	return cmd
}

// backupService создает сервис резервного копирования из настроек приложения
func (app *Application) backupService() (*backup.Service, error) {
	if !app.Config.BackupEnabled() {
		return nil, fmt.Errorf("резервное копирование не настроено: задайте aws_bucket_name, aws_access_key и aws_secret_key")
	}

	bucket, err := backup.NewBucket(&backup.Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к бакету: %w", err)
	}

	return backup.NewService(bucket, app.Store, app.Logger), nil
}

func (app *Application) backupDatabase(ctx context.Context, keep int) error {
	service, err := app.backupService()
	if err != nil {
		return err
	}

	fmt.Printf("📤 Выгружаем базу в S3:\n")
	fmt.Printf("   База: %s\n", app.Config.DatabasePath)
	fmt.Printf("   Бакет: %s\n", app.Config.AwsBucketName)
	fmt.Println()

	startTime := time.Now()
	result, err := service.Backup(ctx, func(bytesRead int64) {
		elapsed := time.Since(startTime)
		fmt.Printf("\r📊 Отправлено: %s | Прошло: %s",
			utils.FormatFileSize(bytesRead),
			utils.FormatDuration(elapsed))
	})
	if err != nil {
		return fmt.Errorf("ошибка резервного копирования: %w", err)
	}

	fmt.Printf("\n✅ Резервная копия загружена (%s)\n", utils.FormatFileSize(result.Size))
	fmt.Printf("   URL: %s\n", result.URL)

	if keep > 0 {
		removed, err := service.Prune(ctx, keep)
		if err != nil {
			return fmt.Errorf("ошибка удаления старых копий: %w", err)
		}
		for _, key := range removed {
			fmt.Printf("🗑️  Удалена старая копия: %s\n", key)
		}
	}
	return nil
}
