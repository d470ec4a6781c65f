package watari

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MirrorClient wraps the S3 client for the artifact mirror bucket.
type MirrorClient struct {
	Client     *s3.Client
	BucketName string
}

// NewMirrorClient initializes an S3 client from configuration values. Any
// S3-compatible endpoint works; the default deployment uses Cloudflare R2.
func NewMirrorClient(cfg *Config) (*MirrorClient, error) {
	endpoint := cfg.Values["WATARI_S3_ENDPOINT"]
	accessKey := cfg.Values["WATARI_S3_ACCESS_KEY_ID"]
	secretKey := cfg.Values["WATARI_S3_SECRET_ACCESS_KEY"]
	bucketName := cfg.Values["WATARI_S3_BUCKET"]

	if endpoint == "" || accessKey == "" || secretKey == "" || bucketName == "" {
		return nil, fmt.Errorf("mirror credentials missing in configuration (WATARI_S3_ENDPOINT, WATARI_S3_ACCESS_KEY_ID, WATARI_S3_SECRET_ACCESS_KEY, WATARI_S3_BUCKET)")
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: endpoint}, nil
	})

	options := []func(*config.LoadOptions) error{
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion("auto"),
	}

	if Debug {
		options = append(options, config.WithClientLogMode(aws.LogSigning|aws.LogRetries|aws.LogRequest|aws.LogResponse))
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load mirror config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &MirrorClient{
		Client:     client,
		BucketName: bucketName,
	}, nil
}

// UploadLocalFile uploads a file from disk to the mirror.
func (m *MirrorClient) UploadLocalFile(ctx context.Context, key, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	contentType := "application/octet-stream"
	if strings.HasSuffix(key, ".zst") {
		contentType = "application/zstd"
	}

	_, err = m.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.BucketName),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String(contentType),
	})
	return err
}

// MirrorObject represents metadata for an object on the mirror.
type MirrorObject struct {
	Key  string
	Size int64
}

// ListObjects returns the objects in the bucket with the given prefix.
func (m *MirrorClient) ListObjects(ctx context.Context, prefix string) ([]MirrorObject, error) {
	var objects []MirrorObject
	paginator := s3.NewListObjectsV2Paginator(m.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.BucketName),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			objects = append(objects, MirrorObject{
				Key:  *obj.Key,
				Size: *obj.Size,
			})
		}
	}
	return objects, nil
}

// bundleKey is the mirror object key for a local bundle path.
func bundleKey(path string) string {
	return "bundles/" + filepath.Base(path)
}

// partitionBundles splits local bundle paths into those missing from the
// mirror and those already present with an identical size. A size mismatch
// counts as missing so a rebuilt bundle overwrites its stale copy.
func partitionBundles(files []string, existing []MirrorObject) (upload, skip []string) {
	sizeByKey := make(map[string]int64, len(existing))
	for _, obj := range existing {
		sizeByKey[obj.Key] = obj.Size
	}
	for _, f := range files {
		var size int64 = -1
		if info, err := os.Stat(f); err == nil {
			size = info.Size()
		}
		if remote, ok := sizeByKey[bundleKey(f)]; ok && remote == size {
			skip = append(skip, f)
		} else {
			upload = append(upload, f)
		}
	}
	return upload, skip
}

// handleUploadCommand pushes local bundles to the artifact mirror, skipping
// ones the mirror already holds. With no arguments it considers every
// .tar.zst in BinDir.
func handleUploadCommand(ctx context.Context, args []string, cfg *Config) error {
	var files []string
	if len(args) > 0 {
		for _, arg := range args {
			if _, err := os.Stat(arg); err != nil {
				return fmt.Errorf("bundle %s not found", arg)
			}
			files = append(files, arg)
		}
	} else {
		entries, err := os.ReadDir(BinDir)
		if err != nil {
			return fmt.Errorf("failed to read bundle directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".tar.zst") {
				files = append(files, filepath.Join(BinDir, e.Name()))
			}
		}
	}

	if len(files) == 0 {
		colNote.Println("No bundles to upload.")
		return nil
	}

	client, err := NewMirrorClient(cfg)
	if err != nil {
		return err
	}

	existing, err := client.ListObjects(ctx, "bundles/")
	if err != nil {
		return fmt.Errorf("failed to list mirror bundles: %w", err)
	}

	pending, skipped := partitionBundles(files, existing)
	for _, f := range skipped {
		colNote.Printf("Already on the mirror: %s\n", filepath.Base(f))
	}
	if len(pending) == 0 {
		colNote.Println("All bundles are already on the mirror.")
		return nil
	}

	for _, f := range pending {
		fmt.Println("  " + filepath.Base(f))
	}
	if !askForConfirmation(colInfo, "Upload %d bundle(s) to the mirror?", len(pending)) {
		colNote.Println("Operation canceled.")
		return nil
	}

	for _, f := range pending {
		key := bundleKey(f)
		colArrow.Print("-> ")
		colSuccess.Printf("Uploading %s\n", key)
		if err := client.UploadLocalFile(ctx, key, f); err != nil {
			return fmt.Errorf("upload of %s failed: %w", f, err)
		}
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Uploaded %d bundle(s)\n", len(pending))
	return nil
}
