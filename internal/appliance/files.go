package appliance

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/sftp"
	"github.com/schollz/progressbar/v3"
)

// PutFile uploads a local file to the appliance.
func (a *Appliance) PutFile(localPath, remotePath string) error {
	local, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer local.Close()
	return a.put(local, remotePath)
}

// PutBytes writes data to a remote file. Used for generated configs and the
// embedded merger script.
func (a *Appliance) PutBytes(data []byte, remotePath string) error {
	client, err := a.connect()
	if err != nil {
		return err
	}
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("creating sftp client: %w", err)
	}
	defer sftpClient.Close()

	remote, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("creating remote file %s: %w", remotePath, err)
	}
	defer remote.Close()

	_, err = remote.Write(data)
	return err
}

func (a *Appliance) put(r io.Reader, remotePath string) error {
	client, err := a.connect()
	if err != nil {
		return err
	}
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("creating sftp client: %w", err)
	}
	defer sftpClient.Close()

	remote, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("creating remote file %s: %w", remotePath, err)
	}
	defer remote.Close()

	if _, err := io.Copy(remote, r); err != nil {
		return err
	}
	return nil
}

// GetFile downloads a remote file into localDir, keeping its base name, and
// returns the local path. A progress bar is drawn on stderr.
func (a *Appliance) GetFile(remotePath, localDir string) (string, error) {
	client, err := a.connect()
	if err != nil {
		return "", err
	}
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return "", fmt.Errorf("creating sftp client: %w", err)
	}
	defer sftpClient.Close()

	remote, err := sftpClient.Open(remotePath)
	if err != nil {
		return "", fmt.Errorf("opening remote file %s: %w", remotePath, err)
	}
	defer remote.Close()

	stat, err := remote.Stat()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(localDir, os.ModePerm); err != nil {
		return "", err
	}
	localPath := filepath.Join(localDir, path.Base(remotePath))
	local, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	defer local.Close()

	bar := progressbar.DefaultBytes(stat.Size(), path.Base(remotePath))
	if _, err := io.Copy(io.MultiWriter(local, bar), remote); err != nil {
		return "", err
	}
	return localPath, nil
}
